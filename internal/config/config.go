package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Postgres struct {
	Schema string `yaml:"schema"`
	Table  string `yaml:"table"`
}

type Store struct {
	Type             string   `yaml:"type"`
	URL              string   `yaml:"url"`
	ConnectionString string   `yaml:"connection_string"`
	Postgres         Postgres `yaml:"postgres"`
}

type Engine struct {
	Policy string `yaml:"policy"`
}

type Association struct {
	Field  string `yaml:"field"`
	Target string `yaml:"target"`
	Column string `yaml:"column"`
}

type Model struct {
	Class        string        `yaml:"class"`
	Associations []Association `yaml:"associations"`
}

type Kafka struct {
	URL string `yaml:"url"`
}

type Tracker struct {
	Kafka *Kafka `yaml:"kafka"`
}

type LocalConfig struct {
	Path string `yaml:"path"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Repository struct {
	Type        string      `yaml:"type"`
	LocalConfig LocalConfig `yaml:"local"`
	S3Config    S3Config    `yaml:"s3"`
}

type Snapshot struct {
	Classes    []string   `yaml:"classes"`
	Repository Repository `yaml:"repository"`
}

type Lazyref struct {
	Global   Global   `yaml:"global"`
	Store    Store    `yaml:"store"`
	Engine   Engine   `yaml:"engine"`
	Models   []Model  `yaml:"models"`
	Tracker  Tracker  `yaml:"tracker"`
	Snapshot Snapshot `yaml:"snapshot"`
}

func NewLazyrefFromFile(fpath string) (*Lazyref, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	var lazyref Lazyref
	if err := yaml.Unmarshal(bs, &lazyref); err != nil {
		return nil, err
	}

	return &lazyref, nil
}
