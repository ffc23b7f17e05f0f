package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// GeneratorConfig configures fake CRM data
type GeneratorConfig struct {
	Count       int
	EmailChance float64 // 0.0-1.0 (probability of having email)
	PhoneChance float64
	Status      models.LeadStatus // empty picks a weighted random status
}

// Sources are the marketing channels leads arrive from
var Sources = []string{"Google Ads", "Facebook", "Referral", "Yelp", "Website", "Door Hanger"}

// Trade-specific business name prefixes and suffixes
var businessNameParts = struct {
	Prefixes []string
	Suffixes []string
}{
	Prefixes: []string{"Oakridge", "Summit", "Riverside", "Maple", "Cedar", "Harbor", "Pinecrest", "Lakeside", "Granite", "Willow"},
	Suffixes: []string{"Dental", "Bakery", "Auto Body", "Fitness", "Apartments", "Family Practice", "Brewing Co", "Veterinary", "Hardware", "Preschool"},
}

var jobTitles = []string{
	"Panel upgrade to 200A", "EV charger install", "Recessed lighting retrofit",
	"Service call - breaker tripping", "Generator hookup", "Outdoor lighting",
	"Rewire kitchen circuits", "Smoke detector replacement",
}

// GenerateBusinessName creates a realistic customer name
func GenerateBusinessName() string {
	if rand.Float64() < 0.4 {
		return gofakeit.Name()
	}
	prefix := businessNameParts.Prefixes[rand.Intn(len(businessNameParts.Prefixes))]
	suffix := businessNameParts.Suffixes[rand.Intn(len(businessNameParts.Suffixes))]
	return fmt.Sprintf("%s %s", prefix, suffix)
}

func emailFor(name string) string {
	domain := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	domain = strings.ReplaceAll(domain, "'", "")
	domain = strings.ReplaceAll(domain, ".", "")
	if len(domain) > 20 {
		domain = domain[:20]
	}
	return fmt.Sprintf("contact@%s.com", domain)
}

// pickStatus follows a typical funnel: most leads are new or contacted
func pickStatus() models.LeadStatus {
	switch r := rand.Float64(); {
	case r < 0.35:
		return models.LeadStatusNew
	case r < 0.60:
		return models.LeadStatusContacted
	case r < 0.75:
		return models.LeadStatusQualified
	case r < 0.85:
		return models.LeadStatusLost
	default:
		return models.LeadStatusConverted
	}
}

// GenerateLead creates a single lead with realistic data
func GenerateLead(cfg GeneratorConfig) *models.Lead {
	name := GenerateBusinessName()
	l := &models.Lead{
		Name:           name,
		Source:         Sources[rand.Intn(len(Sources))],
		Status:         cfg.Status,
		EstimatedValue: float64(gofakeit.Number(5, 250)) * 100,
		Notes:          gofakeit.Sentence(8),
		AssignedTo:     gofakeit.FirstName(),
	}
	if l.Status == "" {
		l.Status = pickStatus()
	}
	if rand.Float64() < cfg.EmailChance {
		l.Email = emailFor(name)
	}
	if rand.Float64() < cfg.PhoneChance {
		l.Phone = gofakeit.Phone()
	}
	return l
}

// GenerateLeads creates multiple leads with the given config
func GenerateLeads(cfg GeneratorConfig) []*models.Lead {
	leads := make([]*models.Lead, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		leads[i] = GenerateLead(cfg)
	}
	return leads
}

// GenerateClient creates a client with full contact details
func GenerateClient() *models.Client {
	name := GenerateBusinessName()
	return &models.Client{
		Name:           name,
		Email:          emailFor(name),
		Phone:          gofakeit.Phone(),
		Address:        fmt.Sprintf("%s, %s", gofakeit.Street(), gofakeit.City()),
		Status:         models.ClientStatusActive,
		EstimatedValue: float64(gofakeit.Number(10, 400)) * 100,
		Source:         Sources[rand.Intn(len(Sources))],
	}
}

// GenerateJob creates a pending job for a client
func GenerateJob(clientID int) *models.Job {
	return &models.Job{
		ClientID:       clientID,
		Title:          jobTitles[rand.Intn(len(jobTitles))],
		Description:    gofakeit.Sentence(10),
		Status:         models.JobStatusPending,
		Priority:       models.JobPriorityMedium,
		Budget:         float64(gofakeit.Number(3, 120)) * 100,
		ServiceAddress: gofakeit.Street(),
	}
}

// BulkInsertLeads inserts leads in batches, one transaction per batch
func BulkInsertLeads(ctx context.Context, st *store.Store, leads []*models.Lead, batchSize int) error {
	for i := 0; i < len(leads); i += batchSize {
		end := i + batchSize
		if end > len(leads) {
			end = len(leads)
		}

		batch := leads[i:end]
		err := st.WithTx(ctx, func(tx *store.Store) error {
			for _, l := range batch {
				if _, err := tx.Leads().Create(ctx, l); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
