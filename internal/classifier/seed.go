package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
)

// seedEntry is one row of the YAML seed catalog.
type seedEntry struct {
	Domain   string `yaml:"domain"`
	Name     string `yaml:"name"`
	Tier     string `yaml:"tier"`
	Country  string `yaml:"country"`
	Language string `yaml:"language"`
}

type seedFile struct {
	Sources []seedEntry `yaml:"sources"`
}

// LoadSeedFile parses a YAML seed catalog into media sources.
func LoadSeedFile(path string) ([]models.MediaSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seedSources(parsed.Sources), nil
}

func seedSources(entries []seedEntry) []models.MediaSource {
	sources := make([]models.MediaSource, 0, len(entries))
	for _, e := range entries {
		if e.Domain == "" {
			continue
		}
		code := e.Country
		if code == "" {
			code = "UNK"
		}
		sources = append(sources, models.MediaSource{
			Domain:      e.Domain,
			Name:        e.Name,
			CountryCode: code,
			Language:    e.Language,
			Tier:        models.ParseTier(e.Tier),
		})
	}
	return sources
}

// builtinSeed is the last-resort catalog compiled into the binary. It
// covers the major transnational outlets plus a spread of national ones,
// enough for the classifier to be useful before the store is reachable.
var builtinSeed = []seedEntry{
	{Domain: "bbc.com", Name: "BBC", Tier: "Tier-0", Country: "GBR", Language: "en"},
	{Domain: "bbc.co.uk", Name: "BBC", Tier: "Tier-0", Country: "GBR", Language: "en"},
	{Domain: "reuters.com", Name: "Reuters", Tier: "Tier-0", Country: "GBR", Language: "en"},
	{Domain: "apnews.com", Name: "Associated Press", Tier: "Tier-0", Country: "USA", Language: "en"},
	{Domain: "aljazeera.com", Name: "Al Jazeera", Tier: "Tier-0", Country: "QAT", Language: "en"},
	{Domain: "france24.com", Name: "France 24", Tier: "Tier-0", Country: "FRA", Language: "fr"},
	{Domain: "dw.com", Name: "Deutsche Welle", Tier: "Tier-0", Country: "DEU", Language: "de"},
	{Domain: "cnn.com", Name: "CNN", Tier: "Tier-0", Country: "USA", Language: "en"},
	{Domain: "nytimes.com", Name: "The New York Times", Tier: "Tier-1", Country: "USA", Language: "en"},
	{Domain: "washingtonpost.com", Name: "The Washington Post", Tier: "Tier-1", Country: "USA", Language: "en"},
	{Domain: "theguardian.com", Name: "The Guardian", Tier: "Tier-1", Country: "GBR", Language: "en"},
	{Domain: "lemonde.fr", Name: "Le Monde", Tier: "Tier-1", Country: "FRA", Language: "fr"},
	{Domain: "spiegel.de", Name: "Der Spiegel", Tier: "Tier-1", Country: "DEU", Language: "de"},
	{Domain: "elpais.com", Name: "El País", Tier: "Tier-1", Country: "ESP", Language: "es"},
	{Domain: "cbc.ca", Name: "CBC", Tier: "Tier-1", Country: "CAN", Language: "en"},
	{Domain: "theglobeandmail.com", Name: "The Globe and Mail", Tier: "Tier-1", Country: "CAN", Language: "en"},
	{Domain: "smh.com.au", Name: "The Sydney Morning Herald", Tier: "Tier-1", Country: "AUS", Language: "en"},
	{Domain: "timesofindia.com", Name: "The Times of India", Tier: "Tier-1", Country: "IND", Language: "en"},
	{Domain: "asahi.com", Name: "The Asahi Shimbun", Tier: "Tier-1", Country: "JPN", Language: "ja"},
	{Domain: "folha.uol.com.br", Name: "Folha de S.Paulo", Tier: "Tier-1", Country: "BRA", Language: "pt"},
}

// BuiltinSeed returns the compiled-in catalog.
func BuiltinSeed() []models.MediaSource {
	return seedSources(builtinSeed)
}
