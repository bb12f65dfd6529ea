//go:build !linux

package main

import (
	"errors"

	"github.com/BertoldVdb/go-vgp/config"
	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/regport"
)

var ErrorUnsupportedPlatform = errors.New("Backend is only available on Linux, use sim")

func (a *app) openPlatformRegisters() (regport.Port, error) {
	return nil, ErrorUnsupportedPlatform
}

func platformLines(cfg *config.Config) (lineport.Port, error) {
	return nil, ErrorUnsupportedPlatform
}
