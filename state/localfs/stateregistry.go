package localfs

import (
	"flag"
	"fmt"

	"signet.sh/signet/state"
	"signet.sh/signet/state/stateregistry"
)

var (
	flagLocalDir string
)

func init() {
	stateregistry.MustRegister(stateregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem store (directory)",
		Usage:       stateregistry.UsageCLI | stateregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "LocalFS store directory (for --backend=localfs)")
		},
		Open: func() (state.Store, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			s, err := New(flagLocalDir)
			return s, nil, err
		},
	})
}
