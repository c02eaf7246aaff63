package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go-credit-inventory/internal/config"
	"go-credit-inventory/internal/logging"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/internal/service"
	"go-credit-inventory/internal/store"
	"go-credit-inventory/pkg/database"
	"go-credit-inventory/pkg/jwt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

// env holds what every command needs; close releases it
type env struct {
	db       *gorm.DB
	profiles service.ProfileService
	stores   *store.Manager
}

func setup() (*env, error) {
	cfg, _, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)

	db, err := database.ConnectRegistry(cfg.Database())
	if err != nil {
		return nil, err
	}
	if err := repository.MigrateRegistry(db); err != nil {
		return nil, err
	}

	profileRepo := repository.NewProfileRepo(db)
	stores := store.NewManager(database.NewOpener(cfg.Database(), db), profileRepo, nil)
	profiles := service.NewProfileService(profileRepo, stores, jwt.NewIssuer(cfg.JWTSecret, cfg.SessionTTL), cfg.DefaultCurrencyRate)
	return &env{db: db, profiles: profiles, stores: stores}, nil
}

func (e *env) close() {
	if err := e.stores.CloseAll(); err != nil {
		log.WithError(err).Warn("close profile stores")
	}
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// withEnv wraps a command action with setup and teardown
func withEnv(action func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		return action(c, e)
	}
}

func requireUsername(c *cli.Context) (string, error) {
	username := c.Args().First()
	if username == "" {
		return "", cli.Exit("missing <username> argument", 2)
	}
	return username, nil
}

func main() {
	app := &cli.App{
		Name:  "ledgerctl",
		Usage: "manage profiles, sample data and exports of the credit inventory",
		Commands: []*cli.Command{
			{
				Name:  "profile",
				Usage: "manage profiles",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "register a new profile",
						ArgsUsage: "<username>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "full-name"},
							&cli.StringFlag{Name: "location"},
							&cli.StringFlag{Name: "business"},
							&cli.StringFlag{Name: "rate", Usage: "currency rate, defaults to DEFAULT_CURRENCY_RATE"},
						},
						Action: withEnv(addProfile),
					},
					{
						Name:   "list",
						Usage:  "list profiles, most recently used first",
						Action: withEnv(listProfiles),
					},
					{
						Name:      "delete",
						Usage:     "delete a profile and all of its data",
						ArgsUsage: "<username>",
						Action:    withEnv(deleteProfile),
					},
				},
			},
			{
				Name:      "seed",
				Usage:     "add sample products and a credit sale to a profile",
				ArgsUsage: "<username>",
				Action:    withEnv(seed),
			},
			{
				Name:      "summary",
				Usage:     "print the credit summary and dashboard figures of a profile",
				ArgsUsage: "<username>",
				Action:    withEnv(summary),
			},
			{
				Name:      "export",
				Usage:     "export the data of a profile",
				ArgsUsage: "<username>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "what", Value: "products", Usage: "products, credits or json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "file to write, stdout when empty"},
				},
				Action: withEnv(export),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func addProfile(c *cli.Context, e *env) error {
	username, err := requireUsername(c)
	if err != nil {
		return err
	}
	profile, err := e.profiles.Create(&service.CreateProfileRequest{
		Username:     username,
		FullName:     c.String("full-name"),
		Location:     c.String("location"),
		BusinessName: c.String("business"),
		CurrencyRate: service.NumberField(c.String("rate")),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created %s (rate %s)\n", profile.DisplayName(), profile.CurrencyRate.String())
	return nil
}

func listProfiles(c *cli.Context, e *env) error {
	profiles, err := e.profiles.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tRATE\tLAST LOGIN")
	for _, p := range profiles {
		lastLogin := "never"
		if p.LastLogin != nil {
			lastLogin = p.LastLogin.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Username, p.DisplayName(), p.CurrencyRate.String(), lastLogin)
	}
	return w.Flush()
}

func deleteProfile(c *cli.Context, e *env) error {
	username, err := requireUsername(c)
	if err != nil {
		return err
	}
	if err := e.profiles.Delete(username); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted %s\n", username)
	return nil
}

func seed(c *cli.Context, e *env) error {
	username, err := requireUsername(c)
	if err != nil {
		return err
	}

	profile, err := e.profiles.Get(username)
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		profile, err = e.profiles.Create(&service.CreateProfileRequest{Username: username})
	}
	if err != nil {
		return err
	}

	st, err := e.stores.Open(profile.Username)
	if err != nil {
		return err
	}
	result, err := seedSampleData(st, profile.CurrencyRate)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "added %d products and credit sale #%d to %s\n",
		result.products, result.creditID, profile.Username)
	return nil
}

func summary(c *cli.Context, e *env) error {
	username, err := requireUsername(c)
	if err != nil {
		return err
	}
	st, err := e.stores.Open(username)
	if err != nil {
		return err
	}
	stats, err := st.Dashboard.GetDashboardStats()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Products\t%d (in stock %d, reserved %d, sold %d, damaged %d)\n",
		stats.Products.Total, stats.Products.InStock, stats.Products.Reserved, stats.Products.Sold, stats.Products.Damaged)
	fmt.Fprintf(w, "Revenue\t%s\n", stats.Financial.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "Cost\t%s\n", stats.Financial.TotalCost.StringFixed(2))
	fmt.Fprintf(w, "Profit\t%s (%s%%)\n", stats.Financial.TotalProfit.StringFixed(2), stats.ProfitMargin.StringFixed(1))
	fmt.Fprintf(w, "Credits\t%d\n", stats.Credits.Count)
	fmt.Fprintf(w, "Total credit\t%s\n", stats.Credits.TotalCredits.StringFixed(2))
	fmt.Fprintf(w, "Total paid\t%s\n", stats.Credits.TotalPaid.StringFixed(2))
	fmt.Fprintf(w, "Outstanding\t%s\n", stats.Credits.TotalOutstanding.StringFixed(2))
	return w.Flush()
}

func export(c *cli.Context, e *env) error {
	username, err := requireUsername(c)
	if err != nil {
		return err
	}
	st, err := e.stores.Open(username)
	if err != nil {
		return err
	}

	var out io.Writer = c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		out = f
	}

	switch c.String("what") {
	case "products":
		return st.Export.ProductsCSV(out)
	case "credits":
		return st.Export.CreditsCSV(out)
	case "json":
		profile, err := e.profiles.Get(username)
		if err != nil {
			return err
		}
		bundle, err := st.Export.Bundle(profile)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	return cli.Exit(fmt.Sprintf("unknown export %q, use products, credits or json", c.String("what")), 2)
}
