package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"signet.sh/signet/state/grpcstate"
	"signet.sh/signet/state/stateregistry"

	_ "signet.sh/signet/state/localfs"
)

func main() {
	fs := flag.NewFlagSet("signet-stated", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7787", "listen address")
	backend := fs.String("backend", "localfs", "store backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	stateregistry.RegisterFlags(fs, stateregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range stateregistry.List(stateregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	store, closeFn, err := stateregistry.Open(*backend, stateregistry.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstate.RegisterStoreServer(s, &grpcstate.Server{Store: store})

	fmt.Fprintf(os.Stderr, "signet-stated listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
