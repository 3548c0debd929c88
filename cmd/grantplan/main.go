// Command grantplan assigns a paid plan or adds credits to a user directly in
// the database. It exists to reconcile payments that completed but failed the
// automatic plan grant, and for support-driven adjustments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pradeep20056/thumbnail-genie/internal/adapter/repo"
	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

func main() {
	var (
		idFlag      string
		emailFlag   string
		planFlag    string
		daysFlag    int
		creditsFlag int
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&planFlag, "plan", "", "paid plan to grant (weekly, monthly)")
	flag.IntVar(&daysFlag, "days", 0, "override plan duration in days (0 uses the plan default)")
	flag.IntVar(&creditsFlag, "credits", 0, "credits to add instead of granting a plan")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	plan := strings.TrimSpace(strings.ToLower(planFlag))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	if plan == "" && creditsFlag == 0 {
		exitWithError(errors.New("either -plan or -credits must be provided"))
	}
	if plan != "" && creditsFlag != 0 {
		exitWithError(errors.New("-plan and -credits are mutually exclusive"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	entitlements := repo.NewEntitlementRepository(pool)

	lookupCtx, cancelLookup := context.WithTimeout(context.Background(), 5*time.Second)
	var current *domain.Entitlement
	if userID != "" {
		current, err = entitlements.GetByUserID(lookupCtx, userID)
	} else {
		current, err = entitlements.GetByEmail(lookupCtx, email)
	}
	cancelLookup()
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	updateCtx, cancelUpdate := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelUpdate()

	var updated *domain.Entitlement
	if creditsFlag != 0 {
		updated, err = entitlements.AddCredits(updateCtx, current.UserID, creditsFlag)
		if err != nil {
			exitWithError(fmt.Errorf("failed to add credits: %w", err))
		}
	} else {
		planType, perr := domain.ParsePaidPlan(plan)
		if perr != nil {
			exitWithError(fmt.Errorf("unsupported plan %q", plan))
		}
		days := daysFlag
		if days <= 0 {
			var ok bool
			days, ok = domain.PlanDurationDays(planType)
			if !ok {
				exitWithError(fmt.Errorf("no default duration for plan %q", plan))
			}
		}
		expiry := time.Now().UTC().AddDate(0, 0, days)
		updated, err = entitlements.GrantPlan(updateCtx, current.UserID, planType, expiry)
		if err != nil {
			exitWithError(fmt.Errorf("failed to grant plan: %w", err))
		}
	}

	fmt.Printf("User %s updated: plan=%s credits=%d\n", updated.UserID, updated.PlanType, updated.Credits)
	if updated.PlanExpiry != nil {
		fmt.Printf("plan_expiry=%s\n", updated.PlanExpiry.UTC().Format(time.RFC3339))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
