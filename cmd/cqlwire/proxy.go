package main

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cqlkit/cqlwire/pkg/compress"
	"github.com/cqlkit/cqlwire/pkg/metrics"
	"github.com/cqlkit/cqlwire/pkg/protocol"
)

// logHandler logs each dispatched response.
type logHandler struct {
	logger *slog.Logger
}

func (h *logHandler) CompleteRequest(streamID int8, resp protocol.Response) {
	h.logger.Info("response", "stream", streamID, "frame", describe(resp))
}

func (h *logHandler) NotifyEventListeners(resp protocol.Response) {
	h.logger.Info("event", "frame", describe(resp))
}

func proxyCmd() *cobra.Command {
	var (
		listen      string
		upstream    string
		compressor  string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Forward a live connection, decoding server frames on the side",
		Long: `Run a debugging TCP proxy between a CQL client and its server. Bytes
are forwarded untouched in both directions; the server-to-client stream
is additionally fed through the frame decoder and every decoded
response is logged.

Examples:
  cqlwire proxy --listen=:9043 --upstream=db1:9042
  cqlwire proxy --listen=:9043 --upstream=db1:9042 --metrics-addr=:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProxy(listen, upstream, compressor, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":9043", "Address to accept client connections on")
	cmd.Flags().StringVar(&upstream, "upstream", "127.0.0.1:9042", "Server address to forward to")
	cmd.Flags().StringVar(&compressor, "compressor", "", "Body compressor the connection negotiated: snappy or lz4")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runProxy(listen, upstream, compressor, metricsAddr string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var observer protocol.Observer
	if metricsAddr != "" {
		observer = metrics.NewCodec()
		router := chi.NewRouter()
		router.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, router); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	c, err := selectCompressor(compressor)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	logger.Info("proxy listening", "listen", listen, "upstream", upstream)

	for {
		client, err := ln.Accept()
		if err != nil {
			return err
		}
		go func() {
			if err := proxyConn(client, upstream, c, observer, logger); err != nil {
				logger.Error("connection closed", "error", err)
			}
		}()
	}
}

func proxyConn(client net.Conn, upstream string, c compress.Compressor, observer protocol.Observer, logger *slog.Logger) error {
	defer client.Close()

	server, err := net.Dial("tcp", upstream)
	if err != nil {
		return err
	}
	defer server.Close()

	connLogger := logger.With("client", client.RemoteAddr().String())

	opts := []protocol.DecoderOption{protocol.WithDecoderLogger(connLogger)}
	if c != nil {
		opts = append(opts, protocol.WithDecoderCompressor(c))
	}
	if observer != nil {
		opts = append(opts, protocol.WithDecoderObserver(observer))
	}
	decoder := protocol.NewFrameDecoder(&logHandler{logger: connLogger}, opts...)

	// Client to server: forward untouched.
	go func() {
		_, _ = io.Copy(server, client)
		_ = server.Close()
	}()

	// Server to client: forward, feeding a copy of every chunk through
	// the decoder.
	buf := make([]byte, 32*1024)
	for {
		n, err := server.Read(buf)
		if n > 0 {
			if _, werr := client.Write(buf[:n]); werr != nil {
				return werr
			}
			if derr := decoder.Feed(buf[:n]); derr != nil {
				connLogger.Error("stream undecodable, forwarding blind", "error", derr)
				_, err := io.Copy(client, server)
				return err
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
