package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watch observa o arquivo em path e sinaliza no canal retornado a cada mudança
// (escrita, criação ou rename, com debounce). O canal fecha quando ctx termina.
func Watch(ctx context.Context, path string, log *slog.Logger) (<-chan struct{}, error) {
	if log == nil {
		log = slog.Default()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	// observa o diretório: editores costumam trocar o arquivo via rename
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch directory %s: %w", dir, err)
	}

	ch := make(chan struct{}, 1)
	go watchLoop(ctx, watcher, filepath.Base(absPath), ch, log)

	log.Info("watching overload config", slog.String("path", absPath))
	return ch, nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, file string, ch chan struct{}, log *slog.Logger) {
	defer close(ch)
	defer watcher.Close()

	var debounce *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			select {
			case ch <- struct{}{}:
			default:
				// mudança já pendente
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("overload config watcher error", slog.Any("error", err))
		}
	}
}

// Follow recarrega Resiliency a cada mudança do arquivo e entrega a apply.
// Arquivo inválido (ou apply com erro) é logado e a configuração anterior
// continua valendo. Retorna quando ctx termina.
func Follow(ctx context.Context, path string, log *slog.Logger, apply func(Resiliency) error) error {
	if log == nil {
		log = slog.Default()
	}
	changes, err := Watch(ctx, path, log)
	if err != nil {
		return err
	}

	for range changes {
		r, err := LoadResiliency(path)
		if err != nil {
			log.Error("overload config reload failed", slog.String("path", path), slog.Any("error", err))
			continue
		}
		if err := apply(r); err != nil {
			log.Error("overload config rejected", slog.String("path", path), slog.Any("error", err))
			continue
		}
		log.Info("overload config reloaded", slog.String("path", path), slog.Bool("enabled", r.EnableOverloadProtection))
	}
	return nil
}
