// Package config contains structs to interact with repository
// configuration as well as to configure the library
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reflogged/reflog/internal/env"
	"github.com/reflogged/reflog/internal/gitpath"
	"github.com/reflogged/reflog/internal/pathutil"
	"github.com/spf13/afero"
)

// User holds the identity used to sign commits, read from the
// user.name/user.email keys of .re_flogged/config
type User struct {
	Name  string
	Email string
}

// Config represents the config of a repository, whether it comes
// from the environment or from .re_flogged/config
//
// If you decide to create a Config by yourself, make sure to set
// correct values everywhere
type Config struct {
	// FS represents the file system implementation to use to look for
	// files and directories.
	// Defaults to the regular filesystem.
	FS afero.Fs

	// WorkTreePath represents the path to the directory containing
	// .re_flogged
	WorkTreePath string
	// GitDirPath represents the path to the .re_flogged directory
	// Maps to $RE_FLOGGED_DIR if set
	// Defaults to finding a .re_flogged folder in the current
	// directory, going up the tree until reaching /
	GitDirPath string
	// ObjectDirPath represents the path to the .re_flogged/objects
	// directory. Maps to $RE_FLOGGED_OBJECT_DIRECTORY
	ObjectDirPath string
	// LocalConfig represents the path to the .re_flogged/config file
	// Maps to $RE_FLOGGED_CONFIG
	LocalConfig string

	// User is the identity read from LocalConfig, if any
	User User
}

// LoadConfigOptions represents all the params used to set the default
// values of a Config object
type LoadConfigOptions struct {
	// FS represents the file system implementation to use to look for
	// files and directories.
	// Defaults to the regular filesystem.
	FS afero.Fs
	// WorkingDirectory represents the current working directory
	// Defaults to the current working directory
	WorkingDirectory string
	// GitDirPath corresponds to the .re_flogged directory
	// Set this value to change the default behavior and overwrite
	// $RE_FLOGGED_DIR.
	GitDirPath string
	// SkipGitDirLookUp disables automatic lookup of the .re_flogged
	// directory. Only set to true when initializing a new repository.
	SkipGitDirLookUp bool
}

// LoadConfig returns a new Config that fetches data from the
// environment and from .re_flogged/config
func LoadConfig(e *env.Env, p LoadConfigOptions) (*Config, error) {
	cfg := &Config{
		GitDirPath:    e.Get("RE_FLOGGED_DIR"),
		ObjectDirPath: e.Get("RE_FLOGGED_OBJECT_DIRECTORY"),
		LocalConfig:   e.Get("RE_FLOGGED_CONFIG"),
	}

	if err := setConfig(cfg, p); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigSkipEnv returns a new Config that skips the env
// and uses the default values
func LoadConfigSkipEnv(opts LoadConfigOptions) (*Config, error) {
	return LoadConfig(env.NewFromKVList([]string{}), opts)
}

func setConfig(cfg *Config, opts LoadConfigOptions) error {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	cfg.FS = opts.FS

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get the current directory: %w", err)
	}
	if opts.WorkingDirectory == "" {
		opts.WorkingDirectory = wd
	}
	if !filepath.IsAbs(opts.WorkingDirectory) {
		opts.WorkingDirectory = filepath.Join(wd, opts.WorkingDirectory)
	}

	if opts.GitDirPath != "" {
		cfg.GitDirPath = opts.GitDirPath
	}
	switch {
	case cfg.GitDirPath != "":
		if !filepath.IsAbs(cfg.GitDirPath) {
			cfg.GitDirPath = filepath.Join(opts.WorkingDirectory, cfg.GitDirPath)
		}
		cfg.WorkTreePath = filepath.Dir(cfg.GitDirPath)
	case opts.SkipGitDirLookUp:
		cfg.WorkTreePath = opts.WorkingDirectory
		cfg.GitDirPath = filepath.Join(opts.WorkingDirectory, gitpath.DotGitPath)
	default:
		root, err := pathutil.RepoRootFromPath(cfg.FS, opts.WorkingDirectory)
		if err != nil {
			return err
		}
		cfg.WorkTreePath = root
		cfg.GitDirPath = filepath.Join(root, gitpath.DotGitPath)
	}

	if cfg.LocalConfig == "" {
		cfg.LocalConfig = filepath.Join(cfg.GitDirPath, gitpath.ConfigPath)
	}
	if !filepath.IsAbs(cfg.LocalConfig) {
		cfg.LocalConfig = filepath.Join(opts.WorkingDirectory, cfg.LocalConfig)
	}

	if cfg.ObjectDirPath == "" {
		cfg.ObjectDirPath = filepath.Join(cfg.GitDirPath, gitpath.ObjectsPath)
	}
	if !filepath.IsAbs(cfg.ObjectDirPath) {
		cfg.ObjectDirPath = filepath.Join(opts.WorkingDirectory, cfg.ObjectDirPath)
	}

	user, err := readUser(cfg.FS, cfg.LocalConfig)
	if err != nil {
		return err
	}
	cfg.User = user
	return nil
}

// readUser parses the flat key=value .re_flogged/config file for
// user.name and user.email. A missing file just means no identity
// override, not an error.
func readUser(fs afero.Fs, path string) (User, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return User{}, nil
		}
		return User{}, fmt.Errorf("could not open config file: %w", err)
	}
	defer f.Close()

	var u User
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.TrimSpace(kv[0]) {
		case "user.name":
			u.Name = strings.TrimSpace(kv[1])
		case "user.email":
			u.Email = strings.TrimSpace(kv[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return User{}, fmt.Errorf("could not read config file: %w", err)
	}
	return u, nil
}
