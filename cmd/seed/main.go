// Command seed creates a demo shared list for local development. Accounts
// live with the auth provider, so users are given as ids.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/config"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/service"
)

var demoItems = []string{"Milk", "Eggs", "Bread", "Chicken", "Rice", "Tomato", "Onion", "Cheese"}

func main() {
	ownerFlag := flag.String("owner", "", "Owner user id (required)")
	membersFlag := flag.String("members", "", "Comma separated user ids to add as viewers")
	editorFlag := flag.Bool("editors", false, "Give the members edit permission")
	name := flag.String("name", "Demo groceries", "List name")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Setup("info", "text").WithError(err).Fatal("Invalid configuration")
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	owner, err := uuid.Parse(*ownerFlag)
	if err != nil {
		log.Fatal("-owner must be a user id")
	}
	var members []uuid.UUID
	for _, raw := range strings.Split(*membersFlag, ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Fatalf("invalid member id %q", raw)
		}
		members = append(members, id)
	}

	ctx := context.Background()
	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)
	if err := database.Migrate(ctx, db, log); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	scope := database.NewScope(db, cfg.DBRLSRole)
	lists := service.NewListService(scope, nil, log)
	groceries := service.NewGroceryService(scope, nil, log)

	list, err := lists.Create(ctx, owner, *name)
	if err != nil {
		log.WithError(err).Fatal("Failed to create list")
	}
	log.WithField("share_code", list.ShareCode).Infof("Created list %s", list.ID)

	for i, itemName := range demoItems {
		item, err := groceries.CreateItem(ctx, owner, list.ID, itemName)
		if err != nil {
			log.WithError(err).Warnf("Failed to add %s", itemName)
			continue
		}
		// Every third item starts purchased so the chat has ingredients.
		if i%3 == 0 {
			if _, err := groceries.UpdateStatus(ctx, owner, list.ID, item.ID, models.StatusPurchased); err != nil {
				log.WithError(err).Warnf("Failed to check off %s", itemName)
			}
		}
	}

	for _, member := range members {
		if _, err := lists.Join(ctx, member, list.ShareCode); err != nil {
			log.WithError(err).Warnf("Failed to add member %s", member)
			continue
		}
		if *editorFlag {
			if _, err := lists.UpdateMemberPermission(ctx, owner, list.ID, member, true); err != nil {
				log.WithError(err).Warnf("Failed to grant edit to %s", member)
			}
		}
	}

	fmt.Printf("List %q ready: id=%s share_code=%s items=%d members=%d\n",
		list.Name, list.ID, list.ShareCode, len(demoItems), len(members))
}
