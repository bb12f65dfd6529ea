package main

import (
	"github.com/BertoldVdb/go-vgp/config"
	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/regport"
)

func (a *app) openPlatformRegisters() (regport.Port, error) {
	d, err := regport.OpenDevMem(a.cfg.DevMem)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, d)
	return d, nil
}

func platformLines(cfg *config.Config) (lineport.Port, error) {
	if cfg.Lines == config.LinesUAPI {
		return &lineport.UAPI{Consumer: cfg.Consumer}, nil
	}
	return &lineport.Cdev{Consumer: cfg.Consumer}, nil
}
