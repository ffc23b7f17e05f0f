package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/voltflow/crm/config"
	"github.com/voltflow/crm/pkg/auth"
	"github.com/voltflow/crm/pkg/database"
	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/reports"
	"github.com/voltflow/crm/pkg/store"
	"github.com/voltflow/crm/pkg/testdata"
)

func main() {
	leadCount := flag.Int("leads", 50, "number of leads to generate")
	clientCount := flag.Int("clients", 15, "number of clients to generate")
	adminEmail := flag.String("admin-email", "admin@voltflow.app", "admin profile e-mail")
	flag.Parse()

	cfg := config.Load()

	var (
		db  *database.Client
		err error
	)
	if cfg.DBDriver == "sqlite3" || cfg.DBDriver == "sqlite" {
		db, err = database.NewSQLiteClient(cfg.DatabaseURL)
	} else {
		db, err = database.NewClient(cfg.DatabaseURL)
	}
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	st := store.New(db.Driver)

	if err := seedAdmin(ctx, st, *adminEmail); err != nil {
		log.Fatalf("❌ Failed to seed admin: %v", err)
	}

	log.Printf("🌱 Seeding %d leads...", *leadCount)
	leads := testdata.GenerateLeads(testdata.GeneratorConfig{Count: *leadCount, EmailChance: 0.8, PhoneChance: 0.9})
	if err := testdata.BulkInsertLeads(ctx, st, leads, 25); err != nil {
		log.Fatalf("❌ Failed to seed leads: %v", err)
	}

	log.Printf("🌱 Seeding %d clients with quotes, jobs and invoices...", *clientCount)
	for i := 0; i < *clientCount; i++ {
		if err := seedClient(ctx, st); err != nil {
			log.Fatalf("❌ Failed to seed client: %v", err)
		}
	}

	if err := seedChannels(ctx, st); err != nil {
		log.Fatalf("❌ Failed to seed channel reports: %v", err)
	}

	log.Println("✅ Seed completed")
}

func seedAdmin(ctx context.Context, st *store.Store, email string) error {
	if _, err := st.Profiles().GetByEmail(ctx, email); err == nil {
		log.Printf("Admin profile %s already exists, skipping", email)
		return nil
	} else if !domain.IsNotFound(err) {
		return err
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		log.Println("⚠️  ADMIN_PASSWORD not set, using default password")
		log.Println("⚠️  Please change this password after first login!")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed hashing password: %w", err)
	}

	admin, err := st.Profiles().Create(ctx, &models.UserProfile{
		Email:        email,
		FullName:     "Admin User",
		PasswordHash: hash,
		Role:         "Admin",
	})
	if err != nil {
		return err
	}
	log.Printf("✅ Admin profile created (ID: %d, email: %s)", admin.ID, admin.Email)
	return nil
}

// seedClient creates a client with an accepted quote, its job and an invoice
func seedClient(ctx context.Context, st *store.Store) error {
	return st.WithTx(ctx, func(tx *store.Store) error {
		client, err := tx.Clients().Create(ctx, testdata.GenerateClient())
		if err != nil {
			return err
		}

		job, err := tx.Jobs().Create(ctx, testdata.GenerateJob(client.ID))
		if err != nil {
			return err
		}

		jobID := job.ID
		quote, err := tx.Quotes().Create(ctx, &models.Quote{
			ClientID: client.ID,
			JobID:    &jobID,
			Amount:   job.Budget,
			Status:   models.QuoteStatusAccepted,
			Terms:    "50% deposit, balance on completion.",
		})
		if err != nil {
			return err
		}

		due := time.Now().UTC().AddDate(0, 0, gofakeit.Number(-20, 30))
		quoteID := quote.ID
		status := models.InvoiceStatusSent
		if gofakeit.Bool() {
			status = models.InvoiceStatusPaid
		}
		_, err = tx.Invoices().Create(ctx, &models.Invoice{
			ClientID:     client.ID,
			JobID:        &jobID,
			QuoteID:      &quoteID,
			Amount:       quote.Amount,
			Status:       status,
			DueDate:      &due,
			PaymentTerms: "Payment due within 30 days.",
		})
		return err
	})
}

// seedChannels fills the last three months of channel reports
func seedChannels(ctx context.Context, st *store.Store) error {
	current := reports.CurrentMonth(time.Now())
	for delta := 0; delta > -3; delta-- {
		month, err := reports.ShiftMonth(current, delta)
		if err != nil {
			return err
		}
		for _, channel := range testdata.Sources {
			row := &models.ChannelReport{
				Month:   month,
				Channel: channel,
				Cost:    float64(gofakeit.Number(100, 2000)),
				Leads:   gofakeit.Number(5, 60),
				Jobs:    gofakeit.Number(0, 12),
				Revenue: float64(gofakeit.Number(0, 30)) * 500,
			}
			reports.Derive(row)
			if _, err := st.Channels().Upsert(ctx, row); err != nil {
				return err
			}
		}
	}
	log.Printf("✅ Channel reports seeded for 3 months")
	return nil
}
