// Package main is the entry point for the blogg terminal client. It loads
// configuration, wires the session store, resource synchronizer, mutation
// gateway, admin loader, and view controller, then drives them from a
// line-oriented command loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/princerobleodom/blogg/internal/admin"
	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/cache"
	"github.com/princerobleodom/blogg/internal/config"
	"github.com/princerobleodom/blogg/internal/controller"
	"github.com/princerobleodom/blogg/internal/gateway"
	"github.com/princerobleodom/blogg/internal/metrics"
	"github.com/princerobleodom/blogg/internal/session"
	"github.com/princerobleodom/blogg/internal/syncer"
	"github.com/princerobleodom/blogg/internal/token"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Optional .env bootstrap for local development.
	if err := godotenv.Load(); err == nil {
		slog.Debug(".env loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "api", cfg.BaseURL, "env", cfg.Env)

	// Prometheus exposition, optional.
	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			slog.Info("metrics endpoint starting", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	// Snapshot cache, optional. The client works identically without it.
	var snapshots *cache.Cache
	if cfg.CacheEnabled() {
		valkey, err := cache.Connect(cfg.ValkeyAddr(), cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("snapshot cache unavailable, continuing without it", "error", err)
		} else {
			defer valkey.Close()
			snapshots = cache.New(valkey, cache.DefaultTTL)
		}
	}

	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath, err = token.DefaultPath()
		if err != nil {
			slog.Error("cannot resolve token path", "error", err)
			os.Exit(1)
		}
	}

	client := api.New(cfg.BaseURL, m)
	sess := session.NewStore(client, token.NewStore(tokenPath))
	sync := syncer.New(client, snapshots, m)
	loader := admin.NewLoader(client, sess)
	gw := gateway.New(client, sess, sync, loader, m)
	ctrl := controller.New(sess, sync, loader)

	ctx := context.Background()

	// Session restore is fire-and-forget: the client renders
	// unauthenticated until (and unless) the stored token validates.
	go func() {
		if err := sess.Restore(ctx); err != nil {
			slog.Info("no session restored", "error", err)
		}
	}()

	// Startup reads: category set once, post list with the empty filter.
	if err := sync.LoadCategories(ctx); err != nil {
		slog.Warn("categories unavailable", "error", err)
	}
	sync.LoadPosts(ctx)

	runLoop(ctx, client, sess, sync, gw, loader, ctrl)
}

// runLoop reads commands from stdin until EOF or quit. It is a thin driver:
// all state and authorization rules live in the components it calls.
func runLoop(ctx context.Context, client *api.Client, sess *session.Store, sync *syncer.Synchronizer, gw *gateway.Gateway, loader *admin.Loader, ctrl *controller.Controller) {
	fmt.Println("blogg — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("[%s] > ", ctrl.Current())
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printHelp()
		case "quit", "exit":
			return

		case "posts":
			if err := ctrl.Navigate(ctx, controller.ViewHome); err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, p := range sync.Posts() {
				fmt.Printf("%s  %-40s %-12s %d likes, %d comments\n",
					p.ID, p.Title, p.Category, p.LikeCount, p.CommentCount)
			}
		case "search":
			f := sync.Filter()
			f.Search = strings.Join(args, " ")
			sync.SetFilter(ctx, f)
			fmt.Printf("%d posts\n", len(sync.Posts()))
		case "category":
			f := sync.Filter()
			f.Category = strings.Join(args, " ")
			sync.SetFilter(ctx, f)
			fmt.Printf("%d posts\n", len(sync.Posts()))
		case "categories":
			fmt.Println(strings.Join(sync.Categories(), ", "))
		case "open":
			if len(args) != 1 {
				fmt.Println("usage: open <post-id>")
				continue
			}
			if err := ctrl.OpenPost(ctx, args[0]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printDetail(sync.Detail())
			if s := sess.Snapshot(); s.Authenticated() {
				if liked, err := client.LikeStatus(ctx, s.Token, args[0]); err == nil && liked {
					fmt.Println("(you liked this post)")
				}
			}

		case "login":
			if len(args) != 2 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			s, err := sess.Login(ctx, api.Credentials{Email: args[0], Password: args[1]})
			if err != nil {
				fmt.Println(failureMessage(err, "Login failed"))
				continue
			}
			fmt.Println("welcome,", s.User.Name)
		case "register":
			if len(args) != 3 {
				fmt.Println("usage: register <name> <email> <password>")
				continue
			}
			s, err := sess.Register(ctx, api.Profile{Name: args[0], Email: args[1], Password: args[2]})
			if err != nil {
				fmt.Println(failureMessage(err, "Registration failed"))
				continue
			}
			fmt.Println("welcome,", s.User.Name)
		case "logout":
			ctrl.Logout()
			fmt.Println("logged out")
		case "whoami":
			s := sess.Snapshot()
			if !s.Authenticated() {
				fmt.Println("not logged in")
				continue
			}
			fmt.Printf("%s <%s> admin=%v\n", s.User.Name, s.User.Email, s.User.IsAdmin)

		case "like":
			if len(args) != 1 {
				fmt.Println("usage: like <post-id>")
				continue
			}
			if err := gw.Like(ctx, args[0]); err != nil {
				fmt.Println(failureMessage(err, "Like failed"))
			}
		case "comment":
			if len(args) < 2 {
				fmt.Println("usage: comment <post-id> <text>")
				continue
			}
			if err := gw.Comment(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				fmt.Println(failureMessage(err, "Comment failed"))
			}

		case "admin", "admin-users", "admin-logins":
			if err := ctrl.Navigate(ctx, controller.View(cmd)); err != nil {
				fmt.Println("error:", err)
				continue
			}
			printAdmin(ctrl.Current(), loader)
		case "ban":
			if len(args) != 1 {
				fmt.Println("usage: ban <user-id>")
				continue
			}
			if err := gw.BanUser(ctx, args[0]); err != nil {
				fmt.Println(failureMessage(err, "Ban failed"))
			}
		case "unban":
			if len(args) != 1 {
				fmt.Println("usage: unban <user-id>")
				continue
			}
			if err := gw.UnbanUser(ctx, args[0]); err != nil {
				fmt.Println(failureMessage(err, "Unban failed"))
			}

		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

// failureMessage surfaces the server's detail when one was given, falling
// back to a generic message.
func failureMessage(err error, fallback string) string {
	if detail := api.Detail(err); detail != "" {
		return detail
	}
	return fallback
}

func printDetail(p *api.Post) {
	if p == nil {
		return
	}
	fmt.Printf("%s\nby %s in %s on %s — %d likes\n\n%s\n",
		p.Title, p.AuthorName, p.Category, p.CreatedAt.Format("2006-01-02"), p.LikeCount, p.Content)
	fmt.Printf("\ncomments (%d):\n", len(p.Comments))
	for _, c := range p.Comments {
		fmt.Printf("  %s [%s] %s: %s\n", c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.AuthorName, c.Content)
	}
}

func printAdmin(view controller.View, loader *admin.Loader) {
	switch view {
	case controller.ViewAdmin:
		snap := loader.Snapshot()
		if snap == nil {
			fmt.Println("no data")
			return
		}
		fmt.Printf("users=%d posts=%d comments=%d likes=%d\n",
			snap.Stats.TotalUsers, snap.Stats.TotalPosts, snap.Stats.TotalComments, snap.Stats.TotalLikes)
	case controller.ViewAdminUsers:
		for _, u := range loader.UserList() {
			status := "active"
			if u.IsBanned {
				status = "banned"
			}
			fmt.Printf("%s  %-25s %-30s admin=%-5v %s\n", u.ID, u.Name, u.Email, u.IsAdmin, status)
		}
	case controller.ViewAdminLogins:
		for _, a := range loader.AttemptList() {
			fmt.Printf("%s  %-30s %-15s %-8s success=%v\n",
				a.Timestamp.Format("2006-01-02 15:04:05"), a.Email, a.IPAddress, a.AttemptType, a.Success)
		}
	}
}

func printHelp() {
	fmt.Print(`reading:   posts | search <term> | category <name> | categories | open <id>
account:   login <email> <pw> | register <name> <email> <pw> | logout | whoami
writing:   like <id> | comment <id> <text>
admin:     admin | admin-users | admin-logins | ban <id> | unban <id>
other:     help | quit
`)
}
