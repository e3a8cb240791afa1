package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/NotIntruder/Expense-Tracker/internal/cli"
	"github.com/NotIntruder/Expense-Tracker/internal/core"
	"github.com/NotIntruder/Expense-Tracker/internal/rates"
	"github.com/NotIntruder/Expense-Tracker/internal/services"
)

const usage = `Usage: tracker <command> [flags]

Commands:
  add-expense   -amount <n> -date <YYYY-MM-DD> -category <c> [-description <d>] [-currency <c>]
  add-income    -amount <n> -date <YYYY-MM-DD> -source <s> [-description <d>] [-currency <c>]
  list          [-type expense|income] [-start <date>] [-end <date>] [-category <c>] [-source <s>]
  summary       [-currency <code>] [list flags]
  find          -id <prefix>
  delete        -id <id>
  convert       -amount <n> -from <currency> -to <currency>
  set-currency  -currency <code or symbol>
  rates         show exchange-rate cache status
`

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	catalog, err := cfg.LoadCatalog()
	if err != nil {
		logger.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}

	result := cli.InitBackend(logger, cfg)
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	}()

	events := cli.InitEventClient(logger, cfg)
	if events != nil {
		defer events.Close()
	}

	rateSvc := rates.NewService(rates.Config{
		URL:     cfg.RatesURL,
		Timeout: cfg.RatesTimeout,
	}, catalog, logger.Logger)

	svc := services.NewTransactionService(result.Repository, catalog, events, rateSvc.ConvertStatic)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:], svc, rateSvc); err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, svc *services.TransactionService, rateSvc *rates.Service) error {
	switch command {
	case "add-expense":
		return runAddExpense(ctx, args, svc)
	case "add-income":
		return runAddIncome(ctx, args, svc)
	case "list":
		return runList(ctx, args, svc)
	case "summary":
		return runSummary(ctx, args, svc, rateSvc)
	case "find":
		return runFind(ctx, args, svc)
	case "delete":
		return runDelete(ctx, args, svc)
	case "convert":
		return runConvert(ctx, args, rateSvc)
	case "set-currency":
		return runSetCurrency(ctx, args, svc)
	case "rates":
		return runRates(rateSvc)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runAddExpense(ctx context.Context, args []string, svc *services.TransactionService) error {
	fs := flag.NewFlagSet("add-expense", flag.ExitOnError)
	amount := fs.String("amount", "", "amount, e.g. 12.34")
	date := fs.String("date", "", "date as YYYY-MM-DD")
	category := fs.String("category", "", "expense category")
	description := fs.String("description", "", "free-text description")
	currency := fs.String("currency", "", "currency code or symbol")
	fs.Parse(args)

	value, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", *amount, err)
	}
	res, err := svc.AddExpense(ctx, value, *date, *category, *description, *currency)
	if err != nil {
		return err
	}
	return printResult(res)
}

func runAddIncome(ctx context.Context, args []string, svc *services.TransactionService) error {
	fs := flag.NewFlagSet("add-income", flag.ExitOnError)
	amount := fs.String("amount", "", "amount, e.g. 12.34")
	date := fs.String("date", "", "date as YYYY-MM-DD")
	source := fs.String("source", "", "income source")
	description := fs.String("description", "", "free-text description")
	currency := fs.String("currency", "", "currency code or symbol")
	fs.Parse(args)

	value, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", *amount, err)
	}
	res, err := svc.AddIncome(ctx, value, *date, *source, *description, *currency)
	if err != nil {
		return err
	}
	return printResult(res)
}

func filterFlags(fs *flag.FlagSet) (txType, start, end, category, source *string) {
	txType = fs.String("type", "", "expense or income")
	start = fs.String("start", "", "inclusive start date")
	end = fs.String("end", "", "inclusive end date")
	category = fs.String("category", "", "expense category (with -type expense)")
	source = fs.String("source", "", "income source (with -type income)")
	return
}

func runList(ctx context.Context, args []string, svc *services.TransactionService) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	txType, start, end, category, source := filterFlags(fs)
	fs.Parse(args)

	records, err := svc.GetTransactions(ctx, services.Filters{
		Type:      core.TransactionType(*txType),
		StartDate: *start,
		EndDate:   *end,
		Category:  *category,
		Source:    *source,
	})
	if err != nil {
		return err
	}
	return printJSON(records)
}

func runSummary(ctx context.Context, args []string, svc *services.TransactionService, rateSvc *rates.Service) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	txType, start, end, category, source := filterFlags(fs)
	currency := fs.String("currency", "", "convert amounts to this currency")
	fs.Parse(args)

	target := *currency
	if target == "" {
		stored, err := svc.DisplayCurrency(ctx)
		if err != nil {
			return err
		}
		target = stored
	}
	// One eager fetch so the synchronous conversions below see live rates.
	rateSvc.Preload(ctx)

	summary, err := svc.GetSummary(ctx, services.Filters{
		Type:      core.TransactionType(*txType),
		StartDate: *start,
		EndDate:   *end,
		Category:  *category,
		Source:    *source,
	}, target)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func runFind(ctx context.Context, args []string, svc *services.TransactionService) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	id := fs.String("id", "", "id prefix")
	fs.Parse(args)

	res, err := svc.FindTransactionByID(ctx, *id)
	if err != nil {
		return err
	}
	return printResult(res)
}

func runDelete(ctx context.Context, args []string, svc *services.TransactionService) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "exact transaction id")
	fs.Parse(args)

	res, err := svc.DeleteTransaction(ctx, *id)
	if err != nil {
		return err
	}
	return printResult(res)
}

func runConvert(ctx context.Context, args []string, rateSvc *rates.Service) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	amount := fs.String("amount", "", "amount to convert")
	from := fs.String("from", "", "source currency code or symbol")
	to := fs.String("to", "", "target currency code or symbol")
	fs.Parse(args)

	value, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", *amount, err)
	}
	converted := rateSvc.Convert(ctx, value, *from, *to)
	fmt.Printf("%.2f %s = %.2f %s\n", value, *from, converted, *to)
	return nil
}

func runSetCurrency(ctx context.Context, args []string, svc *services.TransactionService) error {
	fs := flag.NewFlagSet("set-currency", flag.ExitOnError)
	currency := fs.String("currency", "", "currency code or symbol")
	fs.Parse(args)

	res, err := svc.SetDisplayCurrency(ctx, *currency)
	if err != nil {
		return err
	}
	return printResult(res)
}

func runRates(rateSvc *rates.Service) error {
	return printJSON(rateSvc.CacheStatus())
}

func printResult(res services.Result) error {
	if err := printJSON(res); err != nil {
		return err
	}
	if !res.Success {
		os.Exit(1)
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
