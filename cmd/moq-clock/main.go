// Command moq-clock is a minimal publisher/subscriber exercising the
// session and serve packages end to end: in publish mode it announces
// namespace "clock" and emits one subgroup per minute on track "now",
// a base "YYYY-MM-DD HH:MM:" object followed by one "SS" object per
// second; in subscribe mode it prints whatever it receives.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quic-go/webtransport-go"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/internal/wt"
	"github.com/quic-moq/moqt/message"
	"github.com/quic-moq/moqt/serve"
	"github.com/quic-moq/moqt/session"
)

const (
	namespace = "clock"
	trackName = "now"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	addr := flag.String("addr", "https://localhost:4443/moq", "relay URL to connect to")
	publish := flag.Bool("publish", false, "publish the clock track instead of subscribing")
	insecure := flag.Bool("insecure", true, "skip TLS certificate verification (self-signed relay certs)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	dialer := webtransport.Dialer{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: *insecure},
	}
	_, wtSession, err := dialer.Dial(ctx, *addr, nil)
	if err != nil {
		slog.Error("dial failed", "error", err)
		os.Exit(1)
	}
	defer wtSession.CloseWithError(0, "done")

	transport := wt.New(wtSession)
	moqSession, err := session.Connect(ctx, transport, message.Versions{message.Draft14})
	if err != nil {
		slog.Error("handshake failed", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := moqSession.Run(ctx); err != nil {
			slog.Debug("session ended", "error", err)
			cancel()
		}
	}()

	ns := coding.NewTrackNamespace(namespace)
	if *publish {
		runPublisher(ctx, moqSession, ns)
		return
	}
	runSubscriber(ctx, moqSession, ns)
}

func runPublisher(ctx context.Context, moqSession *session.Session, ns coding.TrackNamespace) {
	writer, request, reader := serve.Tracks{Namespace: ns}.Produce()
	defer reader.Release()

	go func() {
		for {
			trackWriter, err := request.Next(ctx)
			if err != nil || trackWriter == nil {
				return
			}
			go serveClock(ctx, trackWriter)
		}
	}()

	_ = writer
	slog.Info("announcing clock")
	if err := moqSession.Publisher.Announce(ctx, reader); err != nil {
		slog.Error("announce failed", "error", err)
		os.Exit(1)
	}
}

// serveClock feeds a single subscriber's requested TrackWriter: one
// subgroup per minute, a base timestamp object followed by one
// seconds-delta object per tick, 60 objects per subgroup.
func serveClock(ctx context.Context, trackWriter *serve.TrackWriter) {
	subgroups, err := trackWriter.Subgroups()
	if err != nil {
		trackWriter.Close(serve.Internal(fmt.Sprintf("open subgroups: %v", err)))
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var group *serve.SubgroupWriter
	groupID := uint64(0)

	for {
		select {
		case <-ctx.Done():
			if group != nil {
				group.Close(nil)
			}
			subgroups.Close(nil)
			return
		case now := <-ticker.C:
			if now.Second() == 0 || group == nil {
				if group != nil {
					group.Close(nil)
				}
				var err error
				group, err = subgroups.Append(groupID, 0, 0)
				groupID++
				if err != nil {
					subgroups.Close(serve.Internal(fmt.Sprintf("append subgroup: %v", err)))
					return
				}
				if err := group.Write([]byte(now.Format("2006-01-02 15:04:"))); err != nil {
					subgroups.Close(serve.Internal(fmt.Sprintf("write base object: %v", err)))
					return
				}
				continue
			}
			if err := group.Write([]byte(fmt.Sprintf("%02d", now.Second()))); err != nil {
				subgroups.Close(serve.Internal(fmt.Sprintf("write delta object: %v", err)))
				return
			}
		}
	}
}

func runSubscriber(ctx context.Context, moqSession *session.Session, ns coding.TrackNamespace) {
	writer, reader := serve.Track{Namespace: ns, Name: trackName}.Produce()

	cfg := session.SubscribeConfig{Filter: message.FilterLargestObject}
	if err := moqSession.Subscriber.Subscribe(ctx, writer, ns, trackName, cfg); err != nil {
		slog.Error("subscribe failed", "error", err)
		os.Exit(1)
	}

	mode, err := reader.Mode(ctx)
	if err != nil {
		slog.Error("track closed before any data", "error", err)
		os.Exit(1)
	}
	if mode.Subgroups == nil {
		slog.Error("unexpected track mode for clock")
		os.Exit(1)
	}

	for {
		subgroup, err := mode.Subgroups.Next(ctx)
		if err != nil || subgroup == nil {
			return
		}
		go printSubgroup(ctx, subgroup)
	}
}

func printSubgroup(ctx context.Context, subgroup *serve.SubgroupReader) {
	for {
		payload, err := subgroup.ReadNext(ctx)
		if err != nil {
			return
		}
		fmt.Print(string(payload))
		os.Stdout.Sync()
	}
}
