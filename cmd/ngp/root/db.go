package root

import (
	"context"
	"fmt"
	"strings"

	"ngp/internal/config"
	"ngp/internal/engine"
	"ngp/internal/logging"
	"ngp/internal/storage"
)

func openService(ctx context.Context) (*engine.Service, *config.Config, func(), error) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = storage.ResolveDBPath()
		if err != nil {
			return nil, nil, nil, err
		}
	}
	db, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log := logging.New(logging.DefaultLogPath(dbPath), cfg.Debug)
	svc := engine.NewService(db, engine.WithLogger(log))
	cleanup := func() {
		logging.Sync(log)
		_ = db.Close()
	}

	// Keep the stored day boundary in sync with the config file.
	player, err := svc.PlayerRepo().GetOrCreateMain(ctx)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	if player.DayStartsAt != cfg.DayStartsAt {
		if err := svc.SetDayStart(ctx, cfg.DayStartsAt); err != nil {
			cleanup()
			return nil, nil, nil, err
		}
	}

	return svc, cfg, cleanup, nil
}

// resolveSkill accepts a skill id or exact name.
func resolveSkill(ctx context.Context, svc *engine.Service, arg string) (*storage.Skill, error) {
	s, err := svc.SkillRepo().Get(ctx, arg)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	s, err = svc.SkillRepo().GetByName(ctx, arg)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no skill named %q", arg)
	}
	return s, nil
}

// resolveMission accepts a mission id, or a title (unique, case-insensitive)
// among active missions.
func resolveMission(ctx context.Context, svc *engine.Service, arg string) (*storage.Mission, error) {
	m, err := svc.MissionRepo().Get(ctx, arg)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	all, err := svc.MissionRepo().List(ctx, false)
	if err != nil {
		return nil, err
	}
	var matches []*storage.Mission
	for _, cand := range all {
		if strings.EqualFold(cand.Title, arg) {
			matches = append(matches, cand)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no mission named %q", arg)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d missions named %q, use the id", len(matches), arg)
	}
}
