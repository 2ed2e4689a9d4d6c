package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"acquiring-gateway/internal/acquiring"
	"acquiring-gateway/internal/config"
	"acquiring-gateway/internal/db"
	"acquiring-gateway/internal/logger"
	"acquiring-gateway/internal/metrics"
	"acquiring-gateway/internal/payment"
	"acquiring-gateway/internal/refresh"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const refreshJob = "status_refresh"

var errOrderSelector = errors.New("exactly one of --order-id or --order-number is required")

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "acquiring",
		Short:         "Bank acquiring gateway maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Init(cfg.AppEnv)
			return nil
		},
	}

	current := func() *config.Config { return cfg }
	root.AddCommand(newRefreshCmd(current), newOrderStatusCmd(current))
	return root
}

func newRefreshCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-statuses",
		Short: "Pull the bank-side status of every unfinished payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, cfg())
		},
	}
}

func runRefresh(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	log := logger.L()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	database := db.InitDB(cfg)
	defer database.Close()

	repo := payment.NewRepository(database, payment.Tables{
		Payments:   cfg.PaymentsTable,
		Operations: cfg.OperationsTable,
	})
	svc := payment.NewService(client, repo, payment.Options{
		ReturnURL:     cfg.ReturnURL,
		FailURL:       cfg.FailURL,
		MerchantLogin: cfg.MerchantLogin,
	})

	var notifier refresh.Notifier = refresh.LogNotifier{}
	if cfg.AMQPURL != "" {
		conn, err := refresh.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer conn.Close()
		notifier = refresh.NewAMQPNotifier(conn.Channel, cfg.AMQPExchange)
	}

	report, runErr := refresh.NewRefresher(repo, svc, notifier, refresh.NewLimiter(cfg.StatusRefreshRPS)).Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.PushgatewayURL, refreshJob); err != nil {
			log.Warn("failed to push metrics", zap.Error(err))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d payments, %d failed\n", report.Processed, report.Failed)
	if runErr != nil {
		log.Error("status refresh failed", zap.Error(runErr))
	}
	return runErr
}

func newOrderStatusCmd(cfg func() *config.Config) *cobra.Command {
	var orderID, orderNumber string

	cmd := &cobra.Command{
		Use:   "order-status",
		Short: "Print the extended gateway status of one order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := acquiring.Params{}
			switch {
			case orderID != "" && orderNumber == "":
				params["orderId"] = orderID
			case orderNumber != "" && orderID == "":
				params["orderNumber"] = orderNumber
			default:
				return errOrderSelector
			}

			client, err := newClient(cfg())
			if err != nil {
				return err
			}

			res, err := client.GetOrderStatusExtended(cmd.Context(), params)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&orderID, "order-id", "", "gateway order id")
	cmd.Flags().StringVar(&orderNumber, "order-number", "", "merchant order number")
	return cmd
}

func newClient(cfg *config.Config) (*acquiring.Client, error) {
	return acquiring.NewClient(acquiring.Config{
		UserName:         cfg.GatewayUserName,
		Password:         cfg.GatewayPassword,
		Token:            cfg.GatewayToken,
		BaseURI:          cfg.GatewayBaseURI,
		TransportOptions: []acquiring.TransportOption{acquiring.WithTimeout(cfg.GatewayTimeout)},
	})
}
