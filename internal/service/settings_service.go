package service

import (
	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/rs/zerolog"
)

type SettingsService interface {
	Get() (*model.StoreConfig, error)
	Update(req *model.StoreConfigUpdate, actor Actor) (*model.StoreConfig, error)
}

type settingsService struct {
	configRepo repository.StoreConfigRepository
	log        zerolog.Logger
}

func NewSettingsService(cfgRepo repository.StoreConfigRepository, log zerolog.Logger) SettingsService {
	return &settingsService{configRepo: cfgRepo, log: log}
}

func (s *settingsService) Get() (*model.StoreConfig, error) {
	cfg, err := s.configRepo.Get()
	if err != nil {
		return nil, apperr.Wrap("settings.get", err)
	}
	return cfg, nil
}

// Update edits the store settings. Document counters are not editable.
func (s *settingsService) Update(req *model.StoreConfigUpdate, actor Actor) (*model.StoreConfig, error) {
	const op = "settings.update"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	cfg, err := s.configRepo.Get()
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	req.Apply(cfg)
	if err := s.configRepo.Update(cfg); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	s.log.Info().Str("user_id", actor.ID).Str("invoice_prefix", cfg.InvoicePrefix).Msg("store settings updated")
	return cfg, nil
}
