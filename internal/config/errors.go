package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigNotFound   = errors.New("config file not found")
	ErrConfigRead       = errors.New("cannot read config file")
	ErrConfigInvalid    = errors.New("invalid config file")
	ErrMissingKey       = errors.New("missing required key")
	ErrDuplicateSection = errors.New("duplicate section")
	ErrWikiRootMissing  = errors.New("wiki_path does not exist")
)
