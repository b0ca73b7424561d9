package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"astroseva/internal/config"
	"astroseva/internal/database"
	"astroseva/internal/domain"
	"astroseva/internal/repository"
)

type demoUser struct {
	email    string
	password string
	name     string
	role     domain.Role
}

var demoUsers = []demoUser{
	{"admin@astroseva.in", "admin123", "Site Admin", domain.RoleAdmin},
	{"jyotishi.sharma@astroseva.in", "astro123", "Acharya Sharma", domain.RoleAstrologer},
	{"jyotishi.rao@astroseva.in", "astro123", "Pandita Rao", domain.RoleAstrologer},
	{"pandit.mishra@astroseva.in", "priest123", "Pandit Mishra", domain.RolePriest},
	{"anita@example.com", "user123", "Anita Desai", domain.RoleUser},
	{"vikram@example.com", "user123", "Vikram Singh", domain.RoleUser},
}

func main() {
	reset := flag.Bool("reset", false, "delete all bookings before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db, repository.Models()...); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	profiles := repository.NewProfileRepository(db)
	families := repository.NewFamilyProfileRepository(db)
	bookings := repository.NewBookingRepository(db)

	if *reset {
		existing, err := bookings.List(ctx, repository.BookingFilter{})
		if err != nil {
			log.Fatalf("list bookings: %v", err)
		}
		for _, b := range existing {
			if err := bookings.Delete(ctx, b.ID); err != nil {
				log.Fatalf("delete booking %s: %v", b.ID, err)
			}
		}
		log.Printf("Removed %d bookings", len(existing))
	}

	// ================== USERS ==================
	log.Println("Creating users...")
	ids := map[string]string{}
	for _, du := range demoUsers {
		u, err := users.GetByEmail(ctx, du.email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash, herr := bcrypt.GenerateFromPassword([]byte(du.password), bcrypt.DefaultCost)
			if herr != nil {
				log.Fatal(herr)
			}
			u = &domain.User{Email: du.email, PasswordHash: string(hash)}
			err = users.Create(ctx, u)
		}
		if err != nil {
			log.Fatalf("user %s: %v", du.email, err)
		}
		if err := roles.Set(ctx, u.ID, du.role); err != nil {
			log.Fatalf("role %s: %v", du.email, err)
		}
		if err := profiles.Upsert(ctx, &domain.Profile{ID: u.ID, FullName: du.name}); err != nil {
			log.Fatalf("profile %s: %v", du.email, err)
		}
		ids[du.email] = u.ID
		log.Printf("%-10s %s / %s", du.role, du.email, du.password)
	}

	for _, email := range []string{"jyotishi.sharma@astroseva.in", "pandit.mishra@astroseva.in"} {
		if _, err := profiles.SetVerified(ctx, ids[email], true); err != nil {
			log.Fatalf("verify %s: %v", email, err)
		}
	}

	anita := ids["anita@example.com"]
	child := &domain.FamilyProfile{
		UserID:     anita,
		FullName:   "Rohan Desai",
		Relation:   "Child",
		BirthDate:  "2012-09-05",
		BirthTime:  "3:40 AM",
		BirthPlace: "Gujarat",
	}
	existing, err := families.ListByUser(ctx, anita)
	if err != nil {
		log.Fatalf("family profiles: %v", err)
	}
	for _, fp := range existing {
		if fp.FullName == child.FullName {
			child.ID = fp.ID
		}
	}
	if child.ID == "" {
		if err := families.Create(ctx, child); err != nil {
			log.Fatalf("family profile: %v", err)
		}
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")
	seeds := []domain.Booking{
		{
			ServiceType:       domain.ServiceConsultation,
			RequesterID:       domain.StringPtr(anita),
			Status:            domain.BookingPending,
			Name:              "Anita Desai",
			Email:             "anita@example.com",
			Phone:             "9820012345",
			ProblemCategory:   "Marriage",
			DependentCategory: "Single",
			PreferredSlot:     domain.PreferredSlots[0],
			DOB:               "1994-02-18",
			BirthTime:         "10:25 PM",
			BirthState:        "Maharashtra",
			Description:       "Family is looking for a match, want to know about timing.",
		},
		{
			ServiceType:       domain.ServiceConsultation,
			RequesterID:       domain.StringPtr(anita),
			FamilyProfileID:   domain.StringPtr(child.ID),
			Status:            domain.BookingConfirmed,
			AssignedTo:        domain.StringPtr(ids["jyotishi.sharma@astroseva.in"]),
			Name:              child.FullName,
			Phone:             "9820012345",
			ProblemCategory:   "Education",
			DependentCategory: "School",
			PreferredSlot:     domain.PreferredSlots[1],
			DOB:               child.BirthDate,
			BirthTime:         child.BirthTime,
			BirthState:        child.BirthPlace,
		},
		{
			ServiceType:   domain.ServicePooja,
			RequesterID:   domain.StringPtr(ids["vikram@example.com"]),
			Status:        domain.BookingPending,
			Name:          "Vikram Singh",
			Phone:         "9810098100",
			PoojaType:     "Griha Pravesh",
			PreferredSlot: domain.PreferredSlots[0],
			DOB:           "1988-07-01",
			BirthTime:     "5:05 AM",
			BirthState:    "Punjab",
		},
		{
			ServiceType:   domain.ServicePooja,
			Status:        domain.BookingPending,
			Name:          "Walk-in Devotee",
			Phone:         "9000000001",
			PoojaType:     "Navgraha Shanti",
			PreferredSlot: domain.PreferredSlots[1],
			DOB:           "1970-01-26",
			BirthTime:     "12:00 PM",
			BirthState:    "Uttar Pradesh",
		},
	}
	for i := range seeds {
		b := seeds[i]
		if err := bookings.Create(ctx, &b); err != nil {
			log.Fatalf("booking %d: %v", i, err)
		}
		// spread creation times so listings have a stable order
		time.Sleep(5 * time.Millisecond)
	}

	log.Printf("Seed complete: users=%d bookings=%d", len(demoUsers), len(seeds))
}
