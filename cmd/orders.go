package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-order-payments/app/service"
)

var (
	workerMode bool
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Run order payment commands",
}

var payPendingCmd = &cobra.Command{
	Use:   "pay-pending",
	Short: "Charge one batch of pending orders",
	Run: func(_ *cobra.Command, _ []string) {
		cfg, svc, cleanup := mustCreateServices()
		defer cleanup()

		fn := func(ctx context.Context) (service.BatchSummary, error) {
			return svc.payments.RunPayPendingBatch(ctx)
		}
		if workerMode {
			runWorker("pay_pending", cfg.Jobs.PayPendingInterval, fn)
			return
		}
		runJob("pay_pending", func() (service.BatchSummary, error) { return fn(context.Background()) })
	},
}

var payCmd = &cobra.Command{
	Use:   "pay <order-id>...",
	Short: "Charge the given orders",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		_, svc, cleanup := mustCreateServices()
		defer cleanup()

		runJob("pay_orders", func() (service.BatchSummary, error) {
			return svc.payments.PayOrders(context.Background(), args)
		})
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(payPendingCmd)
	ordersCmd.AddCommand(payCmd)

	payPendingCmd.Flags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runWorker(name string, interval time.Duration, fn func(ctx context.Context) (service.BatchSummary, error)) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() (service.BatchSummary, error) { return fn(ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() (service.BatchSummary, error) { return fn(ctx) })
		}
	}
}

func runJob(name string, fn func() (service.BatchSummary, error)) {
	start := time.Now()
	summary, err := fn()
	latency := time.Since(start)

	entry := logrus.WithFields(summary.Fields()).WithField("job", name).WithField("latency", latency.String())
	if err != nil {
		entry.WithError(err).Error("job_failed")
		return
	}
	entry.Info("job_completed")
}
