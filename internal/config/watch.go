package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch re-reads the config file whenever it changes and hands the parsed
// result to onChange. Parse failures keep the previous configuration.
func Watch(ctx context.Context, path string, log *logrus.Logger, onChange func(Conf)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cnf, err := Load(path)
				if err != nil {
					log.WithError(err).Warn("config reload failed, keeping previous settings")
					continue
				}
				log.WithField("path", path).Info("config reloaded")
				onChange(cnf)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")
			}
		}
	}()

	return nil
}
