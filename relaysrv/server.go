// Package relaysrv wires the session and relay packages into a
// WebTransport/HTTP3 server: every connection gets a handshaken
// session whose announces feed relay.Locals and whose unresolved
// subscribes are served by a relay.Producer.
package relaysrv

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"github.com/quic-moq/moqt/internal/certs"
	"github.com/quic-moq/moqt/internal/wt"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/relay"
	"github.com/quic-moq/moqt/serve"
	"github.com/quic-moq/moqt/session"
)

// WebTransport session close error codes sent to clients via CloseWithError.
const (
	wtErrInternal     webtransport.SessionErrorCode = 1
	wtErrSetupFailed  webtransport.SessionErrorCode = 2
	wtErrControlError webtransport.SessionErrorCode = 3
)

// ServerConfig holds the configuration for the relay Server.
type ServerConfig struct {
	Addr string
	Cert *certs.SelfSigned

	// Locals is the registry every connected publisher's announces are
	// registered into, and every connected subscriber's unresolved
	// Subscribe requests are resolved against. Required.
	Locals *relay.Locals

	// Upstream, if non-nil, is consulted when a Subscribe doesn't
	// match anything in Locals, the way a leaf relay forwards to its
	// own upstream relay.
	Upstream *session.Subscriber
}

// Server is the WebTransport/HTTP3 relay server: it accepts MoQT
// sessions over WebTransport and routes their announces and
// subscribes through a shared relay.Locals registry.
type Server struct {
	config ServerConfig
	wtSrv  *webtransport.Server
}

// NewServer builds a Server from cfg. Call Start to begin serving.
func NewServer(cfg ServerConfig) *Server {
	return &Server{config: cfg}
}

// Start launches the HTTP/3 WebTransport listener and blocks until ctx
// is cancelled or a fatal error occurs.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/moq", s.handleMoQ)

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{s.config.Cert.TLSCert},
	}

	s.wtSrv = &webtransport.Server{
		H3: http3.Server{
			Addr:      s.config.Addr,
			Handler:   corsMiddleware(mux),
			TLSConfig: tlsConfig,
			QUICConfig: &quic.Config{
				MaxIdleTimeout: 30 * time.Second,
				Allow0RTT:      true,
			},
		},
		// Origin checking belongs to a reverse proxy in front of this
		// server, not here.
		CheckOrigin: func(_ *http.Request) bool { return true },
	}

	slog.Info("relay server listening", "addr", s.config.Addr)

	stop := context.AfterFunc(ctx, func() { s.wtSrv.Close() })
	defer stop()

	err := s.wtSrv.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleMoQ(w http.ResponseWriter, r *http.Request) {
	wtSession, err := s.wtSrv.Upgrade(w, r)
	if err != nil {
		slog.Error("webtransport upgrade failed", "error", err)
		return
	}

	slog.Info("moqt peer connected", "remote", r.RemoteAddr)

	ctx := wtSession.Context()
	transport := wt.New(wtSession)

	moqSession, err := session.Accept(ctx, transport, message.Versions{message.Draft14})
	if err != nil {
		slog.Warn("moqt handshake failed", "error", err)
		_ = wtSession.CloseWithError(wtErrSetupFailed, "setup failed")
		return
	}

	go s.serveAnnounces(ctx, moqSession)
	go s.serveSubscribes(ctx, moqSession)

	if err := moqSession.Run(ctx); err != nil {
		slog.Debug("moqt session ended", "remote", r.RemoteAddr, "error", err)
	}
}

// serveAnnounces accepts every namespace the peer announces, registers
// it into Locals for the session's lifetime, and bridges subsequent
// track requests back to the peer via its own Subscriber.
func (s *Server) serveAnnounces(ctx context.Context, moqSession *session.Session) {
	for {
		announced, err := moqSession.Subscriber.Announced(ctx)
		if err != nil || announced == nil {
			return
		}
		go s.serveAnnounced(ctx, moqSession, announced)
	}
}

func (s *Server) serveAnnounced(ctx context.Context, moqSession *session.Session, announced *session.Announced) {
	tracks := serve.Tracks{Namespace: announced.Namespace}
	writer, request, reader := tracks.Produce()
	_ = writer // tracks are created on demand, from incoming requests only

	registration, err := s.config.Locals.Register(reader)
	if err != nil {
		_ = announced.Reject(serve.CodeDuplicate, "duplicate namespace")
		reader.Release()
		return
	}

	if err := announced.Accept(); err != nil {
		registration.Close()
		reader.Release()
		return
	}

	defer registration.Close()
	defer reader.Release()

	for {
		trackWriter, err := request.Next(ctx)
		if err != nil || trackWriter == nil {
			request.Close()
			return
		}
		cfg := session.SubscribeConfig{Forward: true, Filter: message.FilterLargestObject}
		if err := moqSession.Subscriber.Subscribe(ctx, trackWriter, announced.Namespace, trackWriter.Info.Name, cfg); err != nil {
			trackWriter.Close(err)
		}
	}
}

// serveSubscribes resolves every Subscribe request the peer issues
// that doesn't match one of its own prior announces (every request a
// plain viewer sends), via the shared relay.Producer.
func (s *Server) serveSubscribes(ctx context.Context, moqSession *session.Session) {
	producer := relay.NewProducer(s.config.Locals, s.config.Upstream)
	for {
		subscribed, err := moqSession.Publisher.Subscribed(ctx)
		if err != nil || subscribed == nil {
			return
		}
		go func() {
			_ = producer.Serve(ctx, subscribed)
		}()
	}
}
