package caja

import (
	"time"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
	"ControlCajaSaas/internal/config"
	"ControlCajaSaas/internal/serviceiface"
)

type CajaService struct {
	config  map[string]interface{}
	store   *dataset.Store
	filters *filterstate.Store
}

func NewCajaService(cfg map[string]interface{}) serviceiface.Service {
	dir := config.DefaultDataDir
	if cfg != nil {
		if v, ok := cfg["data_dir"].(string); ok && v != "" {
			dir = v
		}
	}
	maxIdle := time.Duration(0)
	if cfg != nil {
		if v, ok := cfg["session_max_idle_hours"].(int); ok && v > 0 {
			maxIdle = time.Duration(v) * time.Hour
		}
	}
	s := &CajaService{
		config:  cfg,
		store:   dataset.NewStore(dir),
		filters: filterstate.NewStore(maxIdle),
	}
	globalCajaService = s
	return s
}

func (s *CajaService) Name() string {
	return "caja"
}

func (s *CajaService) Start() error {
	go StartCajaService(s.store, s.filters)
	return nil
}

func (s *CajaService) Stop() error {
	return nil
}

func (s *CajaService) DataStore() *dataset.Store { return s.store }

func (s *CajaService) FilterStore() *filterstate.Store { return s.filters }

var globalCajaService *CajaService

// GlobalFilterStore exposes the running service's filter sessions for the
// login hook and the cleanup job.
func GlobalFilterStore() *filterstate.Store {
	if globalCajaService == nil {
		return nil
	}
	return globalCajaService.filters
}

// GlobalDataStore exposes the running service's dataset store.
func GlobalDataStore() *dataset.Store {
	if globalCajaService == nil {
		return nil
	}
	return globalCajaService.store
}
