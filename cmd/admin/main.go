// Command admin maintains users and time slots in the database.
//
//	admin init-db
//	admin add-user -user NAME -password PW [-role admin] [-coupons N]
//	admin set-coupons -user NAME -coupons N
//	admin create-slots -date 2024-06-01 -from 08:00 -to 12:00 -length 15 -capacity 3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BruksfildServices01/termine-api/internal/config"
	dbpkg "github.com/BruksfildServices01/termine-api/internal/db"
	"github.com/BruksfildServices01/termine-api/internal/infra/repository"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/termine-api/internal/usecase/appointment"
	ucUser "github.com/BruksfildServices01/termine-api/internal/usecase/user"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

const usage = "usage: admin <init-db|add-user|set-coupons|create-slots> [flags]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if err := run(context.Background(), cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger, cmd string, args []string) error {
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	repo := repository.NewAppointmentGormRepository(db)

	switch cmd {
	case "init-db":
		if err := dbpkg.Migrate(db); err != nil {
			return err
		}
		log.Info("schema migrated")
		return nil

	case "add-user":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		userName := fs.String("user", "", "login name")
		password := fs.String("password", "", "initial password")
		role := fs.String("role", models.RoleUser, "user or admin")
		coupons := fs.Int("coupons", 0, "initial coupon balance")
		_ = fs.Parse(args)

		u, err := ucUser.NewAddUser(repo).Execute(ctx, ucUser.AddUserInput{
			UserName: *userName,
			Password: *password,
			Role:     *role,
			Coupons:  *coupons,
		})
		if err != nil {
			return err
		}
		log.Info("user created", "user", u.UserName, "role", u.Role, "coupons", u.Coupons)
		return nil

	case "set-coupons":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		userName := fs.String("user", "", "login name")
		coupons := fs.Int("coupons", 0, "new coupon balance")
		_ = fs.Parse(args)

		if err := ucUser.NewSetCoupons(repo).Execute(ctx, *userName, *coupons); err != nil {
			return err
		}
		log.Info("coupons updated", "user", *userName, "coupons", *coupons)
		return nil

	case "create-slots":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		date := fs.String("date", "", "day in YYYY-MM-DD")
		from := fs.String("from", "08:00", "first slot start, HH:MM")
		to := fs.String("to", "12:00", "last slot end, HH:MM")
		length := fs.Int("length", 15, "slot length in minutes")
		capacity := fs.Int("capacity", 1, "appointments per slot")
		_ = fs.Parse(args)

		loc := timezone.Location(cfg.Timezone)
		start, err := dayTime(*date, *from, loc)
		if err != nil {
			return err
		}
		end, err := dayTime(*date, *to, loc)
		if err != nil {
			return err
		}

		n, err := ucAppointment.NewProvisionSlots(repo).Execute(ctx, ucAppointment.ProvisionSlotsInput{
			From:      start,
			To:        end,
			LengthMin: *length,
			Capacity:  *capacity,
		})
		if err != nil {
			return err
		}
		log.Info("slots created", "date", *date, "created", n)
		return nil

	default:
		return fmt.Errorf("unknown command %q (%s)", cmd, usage)
	}
}

func dayTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := timezone.ParseDateTime(date+"T"+clock+":00", loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %s %s: %w", date, clock, err)
	}
	return t, nil
}
