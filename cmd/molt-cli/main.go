package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"molt-core/internal/chain"
	"molt-core/internal/client"
	"molt-core/internal/service"
	"molt-core/pkg/config"
	"molt-core/pkg/logger"
)

// 运维排查用的命令行工具, 直接访问链和外部数据源, 不碰数据库
func main() {
	root := &cobra.Command{
		Use:   "molt-cli",
		Short: "Molt operational CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Init()
			logger.Init("production") // CLI 不要 debug 噪音
		},
	}

	root.AddCommand(scanCmd(), priceCmd(), verifyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <address>",
		Short: "Scan a wallet for verified ERC-20 balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := args[0]
			if !common.IsHexAddress(address) {
				return fmt.Errorf("invalid address: %s", address)
			}

			reader, err := chain.Dial(config.Global.Chain.RpcUrl, config.Global.Scanner.BalanceChunkSize)
			if err != nil {
				return err
			}
			defer reader.Close()

			indexer := client.NewIndexer(config.Global.Chain.IndexerUrl)
			prices := client.NewPriceOracle(config.Global.Chain.PriceUrl, config.Global.Scanner.PriceChunkSize)
			scanner := service.NewScanner(reader, indexer, prices, nil, 0)

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			tokens, err := scanner.Scan(ctx, address)
			if err != nil {
				return err
			}

			fmt.Printf("%d verified positive balances for %s\n", len(tokens), address)
			for _, t := range tokens {
				price := "-"
				if t.USDPrice != nil {
					price = fmt.Sprintf("$%.6f", *t.USDPrice)
				}
				fmt.Printf("  %-8s %-24s balance=%s price=%s (%s)\n",
					t.Symbol, t.Name, t.Balance, price, t.Address)
			}
			return nil
		},
	}
}

func priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <address> [address...]",
		Short: "Look up current USD prices for token contracts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle := client.NewPriceOracle(config.Global.Chain.PriceUrl, config.Global.Scanner.PriceChunkSize)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			prices, err := oracle.Prices(ctx, args)
			if err != nil {
				return err
			}
			for _, addr := range args {
				if p, ok := prices[addr]; ok {
					fmt.Printf("%s  $%.6f\n", addr, p)
				} else {
					fmt.Printf("%s  (no price)\n", addr)
				}
			}
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <txhash>",
		Short: "Inspect a transaction for dead-address transfers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := chain.Dial(config.Global.Chain.RpcUrl, config.Global.Scanner.BalanceChunkSize)
			if err != nil {
				return err
			}
			defer reader.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			hash := common.HexToHash(args[0])
			receipt, err := reader.TransactionReceipt(ctx, hash)
			if err != nil {
				return err
			}
			fmt.Printf("status=%d logs=%d\n", receipt.Status, len(receipt.Logs))

			found := 0
			for _, lg := range receipt.Logs {
				ev, err := chain.DecodeTransfer(lg)
				if err != nil {
					continue
				}
				if ev.To == chain.DeadAddress {
					found++
					fmt.Printf("  burn: token=%s from=%s value=%s\n",
						ev.Token.Hex(), ev.From.Hex(), ev.Value.String())
				}
			}
			if found == 0 {
				fmt.Println("  no dead-address transfers found")
			}
			return nil
		},
	}
}
