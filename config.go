package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/icexin/gocraft-quests/proto"
	"github.com/icexin/gocraft-quests/quest"
)

// Options are read from the environment first, flags override them.
type Options struct {
	Listen      string `env:"GOCRAFT_LISTEN" envDefault:":8421"`
	DB          string `env:"GOCRAFT_DB" envDefault:"gocraft.db"`
	QuestConfig string `env:"GOCRAFT_QUEST_CONFIG" envDefault:"config.yml"`
	HTTP        string `env:"GOCRAFT_HTTP"`
}

func LoadOptions(args []string) (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}
	fset := flag.NewFlagSet("gocraft-quests", flag.ContinueOnError)
	fset.StringVar(&opts.Listen, "l", opts.Listen, "listen address")
	fset.StringVar(&opts.DB, "db", opts.DB, "db file name")
	fset.StringVar(&opts.QuestConfig, "config", opts.QuestConfig, "quest config file")
	fset.StringVar(&opts.HTTP, "http", opts.HTTP, "admin http address, empty to disable")
	if err := fset.Parse(args); err != nil {
		return Options{}, err
	}
	if opts.DB == "" {
		return Options{}, errors.New("db file name is required")
	}
	return opts, nil
}

const defaultQuestConfig = `# Number of diamond ores to mine.
diamondsRequired: 10
# Experience granted on completion.
rewardXp: 100
# Blocks that count as a diamond.
qualifyingBlocks:
  - diamond_ore
  - deepslate_diamond_ore
`

type questFile struct {
	DiamondsRequired *int     `yaml:"diamondsRequired"`
	RewardXP         *int     `yaml:"rewardXp"`
	QualifyingBlocks []string `yaml:"qualifyingBlocks"`
}

// LoadQuestConfig reads the quest config at path. A missing file is created
// with the defaults, missing keys fall back to their defaults.
func LoadQuestConfig(path string) (quest.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte(defaultQuestConfig), 0644); err != nil {
			return quest.Config{}, fmt.Errorf("write default quest config: %w", err)
		}
		data = []byte(defaultQuestConfig)
	} else if err != nil {
		return quest.Config{}, fmt.Errorf("read quest config: %w", err)
	}
	return parseQuestConfig(data)
}

func parseQuestConfig(data []byte) (quest.Config, error) {
	var f questFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return quest.Config{}, fmt.Errorf("parse quest config: %w", err)
	}
	cfg := quest.DefaultConfig()
	if f.DiamondsRequired != nil {
		cfg.DiamondsRequired = *f.DiamondsRequired
	}
	if f.RewardXP != nil {
		cfg.RewardXP = *f.RewardXP
	}
	if f.QualifyingBlocks != nil {
		kinds := make([]int, 0, len(f.QualifyingBlocks))
		for _, name := range f.QualifyingBlocks {
			w, ok := proto.BlockByName(name)
			if !ok || w == proto.BlockAir {
				return quest.Config{}, fmt.Errorf("unknown qualifying block %q", name)
			}
			kinds = append(kinds, w)
		}
		cfg.Qualifying = quest.NewBlockSet(kinds...)
	}
	if err := cfg.Validate(); err != nil {
		return quest.Config{}, err
	}
	return cfg, nil
}
