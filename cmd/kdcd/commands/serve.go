package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chemikadze/dirkdc/config"
	"github.com/chemikadze/dirkdc/crypto"
	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/logging"
	"github.com/chemikadze/dirkdc/metrics"
	"github.com/chemikadze/dirkdc/principal"
	"github.com/chemikadze/dirkdc/replay"
	"github.com/chemikadze/dirkdc/tgs"
	"github.com/chemikadze/dirkdc/transport"
	"github.com/chemikadze/dirkdc/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the TGS server in the foreground",
	Long: `serve loads configuration and a keytab, then listens for TGS-REQ
datagrams on the configured UDP port until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	store, err := principal.LoadKeytabFile(cfg.KeytabPath)
	if err != nil {
		return err
	}
	logging.Infof("Loaded %d principal(s) from keytab", len(store.All()))

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		startMetricsServer(cfg.Metrics.Listen)
	}

	tgsMetrics := metrics.NewTgsMetrics()
	kdcCfg := cfg.ToKdcConfig()
	server := &tgs.Server{
		Config:   kdcCfg,
		Crypto:   crypto.RandomKeyFactory{},
		Store:    store,
		Replay:   replay.NewCache(kdcCfg.AllowableClockSkew),
		Hotlist:  tgs.NewRevocationHotlist(kdcCfg.MaxRenewableLifetime),
		Recorder: tgsMetrics,
	}

	port, err := listenPort(cfg.Listen)
	if err != nil {
		return err
	}

	tr := transport.NewUdpTransport(port, func(addr *net.UDPAddr, request []byte) ([]byte, error) {
		return handleRequest(server, tgsMetrics, addr, request)
	})

	if err := tr.Listen(); err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}
	logging.Infof("dirkdc serving realm %s on %s", cfg.Realm, cfg.Listen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logging.Infof("Shutdown signal received")
	case <-ctx.Done():
	}

	tr.Close()
	return tr.Join()
}

// handleRequest decodes a single TGS-REQ datagram, runs it through the
// TGS pipeline, and encodes whichever of TGS-REP/KRB-ERROR the pipeline
// produced. Anything that fails before a KRB-ERROR can even be built
// (an unparseable datagram) is logged and dropped rather than replied
// to, per RFC 4120's guidance that a KDC need not answer garbage.
func handleRequest(server *tgs.Server, rec *metrics.TgsMetrics, addr *net.UDPAddr, request []byte) ([]byte, error) {
	msgType, err := wire.DecodeMessageType(request)
	if err != nil {
		return nil, fmt.Errorf("peek message type: %w", err)
	}
	if msgType != int(datamodel.MsgTypeTgsReq) {
		return nil, fmt.Errorf("unsupported message type %d from %v", msgType, addr)
	}

	req, err := wire.DecodeTgsReq(request)
	if err != nil {
		return nil, fmt.Errorf("decode TGS-REQ: %w", err)
	}

	const addrTypeInet = 2 // RFC 4120 section 7.5.3: IPv4 address
	clientAddr := &datamodel.HostAddress{AddrType: addrTypeInet, Address: addr.IP.To4()}
	rep, krbErr, err := server.Execute(req, datamodel.Now(), clientAddr)
	if err != nil {
		return nil, fmt.Errorf("execute TGS pipeline: %w", err)
	}

	if krbErr.ErrorCode != 0 {
		rec.ObserveResult(strconv.Itoa(int(krbErr.ErrorCode)))
		return wire.EncodeKrbError(krbErr)
	}
	rec.ObserveResult("success")
	return wire.EncodeTgsRep(datamodel.KdcRep(rep))
}

func listenPort(listen string) (int, error) {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen port %q: %w", portStr, err)
	}
	return port, nil
}

func startMetricsServer(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logging.Infof("Metrics listening on %s", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf("Metrics server stopped: %v", err)
		}
	}()
}
