package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
)

// CLI seeds and inspects tenant data from the command line.
type CLI struct {
	db     *gorm.DB
	orgs   *services.OrganizationService
	users  *services.UserService
	agents *services.AgentService
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cli := &CLI{
		db:     db.DB(),
		orgs:   services.NewOrganizationService(db),
		users:  services.NewUserService(db),
		agents: services.NewAgentService(db),
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "org-create":
		cli.createOrganization(args)
	case "org-list":
		cli.listOrganizations()
	case "user-create":
		cli.createUser(args)
	case "agent-create":
		cli.createAgent(args)
	case "demo":
		cli.seedDemo()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func (c *CLI) createOrganization(args []string) {
	fs := flag.NewFlagSet("org-create", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	slug := fs.String("slug", "", "organization slug")
	fs.Parse(args)

	if *name == "" || *slug == "" {
		log.Fatal("both -name and -slug are required")
	}

	org := models.Organization{Name: *name, Slug: *slug}
	if err := c.orgs.Create(context.Background(), &org); err != nil {
		log.Fatalf("Failed to create organization: %v", err)
	}

	fmt.Printf("Created organization %d (%s)\n", org.ID, org.Slug)
}

func (c *CLI) listOrganizations() {
	orgs, _, err := c.orgs.List(context.Background(), 100, 0)
	if err != nil {
		log.Fatalf("Failed to list organizations: %v", err)
	}

	for _, org := range orgs {
		fmt.Printf("%d\t%s\t%s\n", org.ID, org.Slug, org.Name)
	}
}

func (c *CLI) createUser(args []string) {
	fs := flag.NewFlagSet("user-create", flag.ExitOnError)
	orgSlug := fs.String("org", "", "organization slug")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "user password")
	role := fs.String("role", models.RoleUser, "user role (admin, user, viewer)")
	name := fs.String("name", "", "full name, first and last separated by a space")
	fs.Parse(args)

	if *orgSlug == "" || *email == "" || *password == "" {
		log.Fatal("-org, -email and -password are required")
	}

	org, err := c.orgs.GetBySlug(context.Background(), *orgSlug)
	if err != nil {
		log.Fatalf("Failed to find organization %q: %v", *orgSlug, err)
	}

	first, last := splitName(*name)
	user, err := c.users.Create(context.Background(), &services.CreateUserInput{
		OrganizationID: org.ID,
		Email:          *email,
		Password:       *password,
		FirstName:      first,
		LastName:       last,
		Role:           *role,
	})
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Created user %d (%s) in %s\n", user.ID, user.Email, org.Slug)
}

func (c *CLI) createAgent(args []string) {
	fs := flag.NewFlagSet("agent-create", flag.ExitOnError)
	orgSlug := fs.String("org", "", "organization slug")
	name := fs.String("name", "", "agent name")
	instructions := fs.String("instructions", "", "system instructions")
	fs.Parse(args)

	if *orgSlug == "" || *name == "" {
		log.Fatal("-org and -name are required")
	}

	org, err := c.orgs.GetBySlug(context.Background(), *orgSlug)
	if err != nil {
		log.Fatalf("Failed to find organization %q: %v", *orgSlug, err)
	}

	agent := models.Agent{
		OrganizationID: org.ID,
		Name:           *name,
		Instructions:   *instructions,
		Temperature:    0.7,
		IsActive:       true,
	}
	if err := c.agents.Create(context.Background(), &agent); err != nil {
		log.Fatalf("Failed to create agent: %v", err)
	}

	fmt.Printf("Created agent %s (%s)\n", agent.UUID, agent.Name)
}

// seedDemo creates a ready-to-use organization with an admin, an agent
// and a permissive widget config for local development.
func (c *CLI) seedDemo() {
	ctx := context.Background()

	org := models.Organization{Name: "Demo Store", Slug: "demo-store"}
	if err := c.orgs.Create(ctx, &org); err != nil {
		log.Fatalf("Failed to create demo organization: %v", err)
	}

	_, err := c.users.Create(ctx, &services.CreateUserInput{
		OrganizationID: org.ID,
		Email:          "admin@demo-store.test",
		Password:       "DemoPass123",
		FirstName:      "Demo",
		LastName:       "Admin",
		Role:           models.RoleAdmin,
	})
	if err != nil {
		log.Fatalf("Failed to create demo admin: %v", err)
	}

	agent := models.Agent{
		OrganizationID: org.ID,
		Name:           "Support Assistant",
		Instructions:   "You are a friendly customer support assistant for Demo Store.",
		Temperature:    0.7,
		IsActive:       true,
	}
	if err := c.agents.Create(ctx, &agent); err != nil {
		log.Fatalf("Failed to create demo agent: %v", err)
	}

	widgetConfig := models.WidgetConfig{
		AgentID:            agent.ID,
		Title:              "Chat with Demo Store",
		Greeting:           "Hi! How can we help you today?",
		AllowedDomains:     []string{"localhost", "*.demo-store.test"},
		RequireDomainMatch: true,
		IsEnabled:          true,
	}
	if err := c.db.Create(&widgetConfig).Error; err != nil {
		log.Fatalf("Failed to create demo widget config: %v", err)
	}

	fmt.Println("Demo data created:")
	fmt.Printf("  organization: %s\n", org.Slug)
	fmt.Println("  admin:        admin@demo-store.test / DemoPass123")
	fmt.Printf("  agent:        %s\n", agent.UUID)
}

func splitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

func printUsage() {
	fmt.Println(`Usage: go run cmd/seed/main.go <command> [flags]

Commands:
  org-create   -name <name> -slug <slug>
  org-list
  user-create  -org <slug> -email <email> -password <password> [-role admin] [-name "First Last"]
  agent-create -org <slug> -name <name> [-instructions <text>]
  demo         Seed a demo organization with an admin, agent and widget config`)
}
