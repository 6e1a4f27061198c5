package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/opencontacts/contactsql/internal/logging"
)

// FileSource serves the properties of a YAML, TOML or JSON file. Nested keys
// are flattened with dots, so `contacts: {search: {charset: utf8mb4}}` sets
// `contacts.search.charset`.
type FileSource struct {
	path   string
	logger zerolog.Logger

	mu          sync.RWMutex
	current     Properties
	subscribers []func(Properties)
}

// NewFileSource reads the file at path.
func NewFileSource(path string) (*FileSource, error) {
	props, err := readFile(path)
	if err != nil {
		return nil, err
	}

	return &FileSource{
		path:    path,
		logger:  logging.Component("config").With().Str("path", path).Logger(),
		current: props,
	}, nil
}

// Current returns the properties read last.
func (s *FileSource) Current() Properties {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to be called with the new properties whenever a
// reload changes them.
func (s *FileSource) Subscribe(fn func(Properties)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Reload reads the file again. If it cannot be read, the previous properties
// are kept. Subscribers are notified when anything changed.
func (s *FileSource) Reload() error {
	props, err := readFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if props.Equal(s.current) {
		s.mu.Unlock()
		return nil
	}
	s.current = props
	subscribers := append([]func(Properties){}, s.subscribers...)
	s.mu.Unlock()

	s.logger.Info().Int("properties", props.Len()).Msg("configuration changed")
	for _, fn := range subscribers {
		fn(props)
	}
	return nil
}

// Watch reloads the file whenever it is written or replaced, until ctx is
// done. Failed reloads are logged and keep the previous properties.
func (s *FileSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch configuration: %w", err)
	}
	defer watcher.Close()

	// editors replace files rather than write them, so watch the directory
	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("unable to watch configuration directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			s.logger.Trace().Stringer("op", event.Op).Msg("configuration file event")
			if err := s.Reload(); err != nil {
				s.logger.Warn().Err(err).Msg("keeping previous configuration")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("configuration watch error")
		}
	}
}

func readFile(path string) (Properties, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Properties{}, fmt.Errorf("unable to read configuration `%s`: %w", path, err)
	}

	values := make(map[string]string, len(v.AllKeys()))
	for _, key := range v.AllKeys() {
		switch value := v.Get(key).(type) {
		case []any:
			items := make([]string, 0, len(value))
			for _, item := range value {
				items = append(items, fmt.Sprint(item))
			}
			values[key] = strings.Join(items, ",")
		default:
			values[key] = v.GetString(key)
		}
	}
	return NewProperties(values), nil
}
