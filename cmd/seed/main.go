// Command seed fills the database with demo authors and articles.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/config"
	"github.com/blogback/blogback/internal/metrics"
	"github.com/blogback/blogback/internal/model"
	"github.com/blogback/blogback/internal/repository"
	"github.com/blogback/blogback/internal/service"
)

// registrar creates an account and returns its first token.
type registrar interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, string, error)
}

// articleCreator stores an article owned by userID.
type articleCreator interface {
	Create(ctx context.Context, userID string, input service.CreateArticleInput) (*model.ArticleWithOwner, error)
}

type options struct {
	users    int
	articles int
	password string
	seed     uint64
}

type seededUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type output struct {
	Users      []seededUser `json:"users"`
	Articles   int          `json:"articles"`
	TotalUsers int64        `json:"total_users"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		users       = flag.Int("users", 5, "Number of authors to create")
		articles    = flag.Int("articles", 20, "Number of articles to create")
		password    = flag.String("password", "password", "Password for every seeded author")
		seed        = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed for article content and ownership")
		migrate     = flag.Bool("migrate", false, "Apply migrations before seeding")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *users < 1 && *articles > 0 {
		fmt.Fprintln(os.Stderr, "articles need at least one user")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, repository.DefaultPoolOptions)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", config.SanitizeError(err, *databaseURL))
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if err := repo.Migrate(ctx, repository.MigrateUp); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewNoop()
	accounts := service.NewAuthService(repo, repo, auth.NewPasswordHasher(auth.DefaultParams), logger, recorder)
	posts := service.NewArticleService(repo, logger, recorder)

	out, err := run(ctx, accounts, posts, options{
		users:    *users,
		articles: *articles,
		password: *password,
		seed:     *seed,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	total, err := repo.CountUsers(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "count users:", err)
		os.Exit(1)
	}
	out.TotalUsers = total

	switch strings.ToLower(*format) {
	case "plain":
		for _, u := range out.Users {
			fmt.Printf("%s\t%s\n", u.Email, u.Token)
		}
		fmt.Printf("%d articles created\n", out.Articles)
		fmt.Printf("%d users in database\n", out.TotalUsers)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// run registers opts.users authors, then creates opts.articles articles each
// owned by a randomly chosen author.
func run(ctx context.Context, accounts registrar, posts articleCreator, opts options) (*output, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	// Emails get a per-run suffix so the command can be repeated.
	runID := strings.ToLower(ulid.Make().String()[20:])

	out := &output{Users: make([]seededUser, 0, opts.users)}
	for i := range opts.users {
		name := fmt.Sprintf("%s %s", pick(rng, firstNames), pick(rng, lastNames))
		email := fmt.Sprintf("author%d.%s@blog.local", i+1, runID)
		user, token, err := accounts.Register(ctx, service.RegisterInput{
			Name:                 &name,
			Email:                &email,
			Password:             &opts.password,
			PasswordConfirmation: &opts.password,
		})
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", email, err)
		}
		out.Users = append(out.Users, seededUser{ID: user.ID, Name: user.Name, Email: user.Email, Token: token})
	}

	for range opts.articles {
		owner := out.Users[rng.IntN(len(out.Users))]
		title := fmt.Sprintf("%s %s %s", pick(rng, adjectives), pick(rng, nouns), pick(rng, suffixes))
		description := paragraph(rng)
		if _, err := posts.Create(ctx, owner.ID, service.CreateArticleInput{
			Title:       &title,
			Description: &description,
		}); err != nil {
			return nil, fmt.Errorf("create article for %s: %w", owner.Email, err)
		}
		out.Articles++
	}

	return out, nil
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.IntN(len(words))]
}

func paragraph(rng *rand.Rand) string {
	n := 2 + rng.IntN(4)
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("The %s %s %s the %s.",
			pick(rng, adjectives), pick(rng, nouns), pick(rng, verbs), pick(rng, nouns))
	}
	return strings.Join(sentences, " ")
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Radia", "Linus", "Frances", "Dennis"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Perlman", "Torvalds", "Allen", "Ritchie"}
	adjectives = []string{"quiet", "curious", "distributed", "lazy", "eventual", "brave", "tiny", "careful"}
	nouns      = []string{"compiler", "garden", "queue", "river", "scheduler", "library", "kernel", "notebook"}
	verbs      = []string{"rewrites", "observes", "outlives", "schedules", "forgets", "mirrors"}
	suffixes   = []string{"in practice", "revisited", "at scale", "for beginners", "considered harmful", "explained"}
)
