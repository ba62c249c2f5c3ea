/*
This command is a small demonstration harness for the esi package: it
proxies GET requests to an upstream, pipes the response body through an
esi.Stream, and writes the transformed bytes to the client.

For the list of command line options, run:

    esi -help
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/esi-edge/esi/esi"
)

const (
	defaultAddress         = ":9090"
	defaultMetricsListener = ":9911"
	defaultEsiPrefix       = "esi"
)

// config is yaml-tagged so -config-file can unmarshal straight into it,
// mirroring config/config.go's Config struct.
type config struct {
	ConfigFile      string `yaml:"-"`
	Address         string `yaml:"address"`
	Upstream        string `yaml:"upstream"`
	MetricsListener string `yaml:"metrics-listener"`
	EsiPrefix       string `yaml:"esi-prefix"`
	disablePrefix   bool
}

// parseFlags follows config.go's ParseArgs sequence: parse the command
// line once, then if -config-file was given, unmarshal the file directly
// over cfg and parse the command line a second time, so an explicit flag
// still overrides a value the file set.
func parseFlags() *config {
	cfg := &config{}
	args := os.Args[1:]

	register := func() {
		flag.StringVar(&cfg.ConfigFile, "config-file", cfg.ConfigFile, "optional YAML file providing flag defaults, overridable by flags")
		flag.StringVar(&cfg.Address, "address", cfg.Address, "listen address for the proxy")
		flag.StringVar(&cfg.Upstream, "upstream", cfg.Upstream, "upstream base URL to proxy and transform (required)")
		flag.StringVar(&cfg.MetricsListener, "metrics-listener", cfg.MetricsListener, "listen address for the Prometheus metrics endpoint")
		flag.StringVar(&cfg.EsiPrefix, "esi-prefix", cfg.EsiPrefix, "ESI namespace prefix; empty disables the ESI transformer")
	}

	cfg.Address = defaultAddress
	cfg.MetricsListener = defaultMetricsListener
	cfg.EsiPrefix = defaultEsiPrefix
	register()
	if err := flag.CommandLine.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "esi: %v\n", err)
		os.Exit(1)
	}

	if cfg.ConfigFile != "" {
		raw, err := os.ReadFile(cfg.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "esi: reading config file: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "esi: parsing config file: %v\n", err)
			os.Exit(1)
		}

		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
		register()
		if err := flag.CommandLine.Parse(args); err != nil {
			fmt.Fprintf(os.Stderr, "esi: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.disablePrefix = cfg.EsiPrefix == ""
	return cfg
}

func main() {
	cfg := parseFlags()
	if cfg.Upstream == "" {
		fmt.Fprintln(os.Stderr, "esi: -upstream is required")
		os.Exit(1)
	}

	go func() {
		log.Infof("listening for metrics on %s", cfg.MetricsListener)
		if err := http.ListenAndServe(cfg.MetricsListener, promhttp.Handler()); err != nil {
			log.WithError(err).Error("metrics listener stopped")
		}
	}()

	opts := streamOptions(cfg)
	handler := newProxyHandler(cfg.Upstream, opts)

	log.Infof("listening on %s, proxying %s", cfg.Address, cfg.Upstream)
	if err := http.ListenAndServe(cfg.Address, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func streamOptions(cfg *config) esi.Options {
	if cfg.disablePrefix {
		return esi.Options{PrefixMode: esi.PrefixDisabled}
	}
	if cfg.EsiPrefix == defaultEsiPrefix {
		return esi.Options{}
	}
	return esi.Options{PrefixMode: esi.PrefixCustom, EsiPrefix: cfg.EsiPrefix}
}

func newProxyHandler(upstream string, opts esi.Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream+r.URL.RequestURI(), nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		req.Header = r.Header.Clone()

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.WithError(err).WithField("url", req.URL.String()).Warn("upstream request failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		for k, vs := range resp.Header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(resp.StatusCode)

		stream, err := esi.NewStream(req.URL.String(), req.Header, opts, 0)
		if err != nil {
			log.WithError(err).Error("failed to construct esi stream")
			return
		}

		if _, err := io.Copy(stream, resp.Body); err != nil {
			log.WithError(err).Warn("error copying upstream body into esi stream")
			return
		}
		if err := stream.Close(); err != nil {
			log.WithError(err).Warn("esi transform failed")
			return
		}
		if _, err := io.Copy(w, stream); err != nil {
			log.WithError(err).Warn("error writing transformed body to client")
		}
	})
}
