package providers

import (
	"github.com/samber/do/v2"

	"github.com/audiofolio/folio-server/internal/logger"
	"github.com/audiofolio/folio-server/internal/scanner"
)

// ProvideProbe provides the audio file probe.
func ProvideProbe(i do.Injector) (*scanner.FileProbe, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return scanner.NewFileProbe(log.Logger), nil
}

// ProvideDiscoverer provides the filesystem discoverer used by library scans.
func ProvideDiscoverer(i do.Injector) (*scanner.Discoverer, error) {
	probe := do.MustInvoke[*scanner.FileProbe](i)
	log := do.MustInvoke[*logger.Logger](i)
	return scanner.NewDiscoverer(probe, log.Logger), nil
}
