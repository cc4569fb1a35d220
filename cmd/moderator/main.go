package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"github.com/tanglechat/moderation/internal/config"
	"github.com/tanglechat/moderation/internal/engine"
	"github.com/tanglechat/moderation/internal/messaging"
	"github.com/tanglechat/moderation/internal/metrics"
	"github.com/tanglechat/moderation/internal/ratelimit"
	"github.com/tanglechat/moderation/internal/report"
	"github.com/tanglechat/moderation/internal/reputation"
	"github.com/tanglechat/moderation/internal/rules"
)

func main() {
	log.Println("Starting Tangle moderation service...")

	// --- Redis (reputation ledger + report rate limits) ---
	redisAddr := "localhost:6379"
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		redisAddr = v
	}

	var (
		ledger  reputation.Store
		limiter *ratelimit.Limiter
		rdb     *redis.Client
	)
	if os.Getenv("IN_MEMORY") == "1" {
		ledger = reputation.NewMemStore()
		log.Printf("[main] IN_MEMORY=1: reputation ledger is in-process, rate limiting off")
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		cancel()
		ledger = reputation.NewRedisStore(rdb)
		limiter = ratelimit.NewLimiter(rdb)
	}

	// --- PostgreSQL (report store) ---
	var reportStore report.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Fatalf("failed to open PostgreSQL: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to PostgreSQL: %v", err)
		}
		if err := report.Migrate(db); err != nil {
			log.Fatalf("failed to run report migrations: %v", err)
		}
		reportStore = report.NewSQLStore(db)
		defer db.Close()
	} else {
		reportStore = report.NewMemStore()
		log.Printf("[main] DATABASE_URL unset: reports are in-process only")
	}

	// --- NATS ---
	natsConfig := messaging.DefaultConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsClient, err := messaging.NewClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// --- Engine ---
	cfg := config.NewStore(config.FromEnv())
	catalog := rules.NewCatalog()
	processor := report.NewProcessor(reportStore, ledger, cfg, limiter)
	eng := engine.New(catalog, cfg, ledger, processor)

	if err := subscribeAll(natsClient, eng); err != nil {
		log.Fatalf("failed to subscribe: %v", err)
	}

	// --- Metrics ---
	metricsAddr := ":9091"
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		metricsAddr = v
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("[main] metrics server: %v", err)
		}
	}()

	log.Printf("Tangle moderation service running")
	log.Printf("  redis_addr:   %s", redisAddr)
	log.Printf("  nats_url:     %s", natsConfig.URL)
	log.Printf("  metrics_addr: %s", metricsAddr)
	log.Printf("  config:       %+v", cfg.Get())

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
	if rdb != nil {
		rdb.Close()
	}
}

// subscribeAll wires the engine's surface onto the NATS subjects.
func subscribeAll(nc *messaging.Client, eng *engine.Engine) error {
	ctx := context.Background()

	err := nc.Subscribe(messaging.SubjectCheck, func(msg *nats.Msg) {
		var req messaging.CheckRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			log.Printf("[moderator] bad check request: %v", err)
			return
		}

		result := eng.ModerateMessage(ctx, req.Text, req.SenderID, &engine.MessageContext{
			ConversationID: req.ConversationID,
			RecipientID:    req.RecipientID,
		})
		if result.IsViolation {
			log.Printf("[moderator] FLAGGED sender=%s action=%s severity=%s types=%v",
				req.SenderID, result.Action, result.Severity, result.ViolationTypes)
		}

		data, err := json.Marshal(result)
		if err != nil {
			log.Printf("[moderator] marshal result: %v", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			log.Printf("[moderator] respond check: %v", err)
		}
	})
	if err != nil {
		return err
	}

	err = nc.Subscribe(messaging.SubjectReportSubmit, func(msg *nats.Msg) {
		var req messaging.ReportRequest
		var reply messaging.ReportReply
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			reply.Error = "bad request: " + err.Error()
		} else {
			id, err := eng.ReportMessage(ctx, req.MessageID, req.ReporterID,
				req.ReportedUserID, req.Reason, req.Category, req.Description)
			if err != nil {
				log.Printf("[moderator] report failed: %v", err)
				reply.Error = err.Error()
			} else {
				reply.ReportID = id
			}
		}

		data, _ := json.Marshal(reply)
		if err := msg.Respond(data); err != nil {
			log.Printf("[moderator] respond report: %v", err)
		}
	})
	if err != nil {
		return err
	}

	err = nc.Subscribe(messaging.SubjectUserStatus, func(msg *nats.Msg) {
		var req messaging.StatusRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			log.Printf("[moderator] bad status request: %v", err)
			return
		}
		data, err := json.Marshal(eng.GetUserStatus(ctx, req.UserID))
		if err != nil {
			log.Printf("[moderator] marshal status: %v", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			log.Printf("[moderator] respond status: %v", err)
		}
	})
	if err != nil {
		return err
	}

	err = nc.Subscribe(messaging.SubjectRuleAdd, func(msg *nats.Msg) {
		var r rules.Rule
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			log.Printf("[moderator] bad rule add request: %v", err)
			return
		}
		id, err := eng.AddCustomRule(r)
		if err != nil {
			log.Printf("[moderator] rule add rejected: %v", err)
		}
		if msg.Reply != "" {
			data, _ := json.Marshal(map[string]string{"rule_id": id, "error": errString(err)})
			msg.Respond(data)
		}
	})
	if err != nil {
		return err
	}

	err = nc.Subscribe(messaging.SubjectRuleRemove, func(msg *nats.Msg) {
		var req messaging.RuleRemoveRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			log.Printf("[moderator] bad rule remove request: %v", err)
			return
		}
		removed := eng.RemoveCustomRule(req.RuleID)
		if msg.Reply != "" {
			data, _ := json.Marshal(map[string]bool{"removed": removed})
			msg.Respond(data)
		}
	})
	if err != nil {
		return err
	}

	return nc.Subscribe(messaging.SubjectConfigUpdate, func(msg *nats.Msg) {
		var p config.Patch
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			log.Printf("[moderator] bad config update: %v", err)
			return
		}
		updated := eng.UpdateConfig(p)
		if msg.Reply != "" {
			data, _ := json.Marshal(updated)
			msg.Respond(data)
		}
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
