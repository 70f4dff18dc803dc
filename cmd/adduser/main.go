// Command adduser creates a member or resets a member's PIN.
//
// Usage:
//
//	go run ./cmd/adduser -name Ana -pin 1234 -chat
//	go run ./cmd/adduser -id 3 -pin 5678   # reset the PIN of user 3
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/cineclub/internal/config"
	"github.com/iliyamo/cineclub/internal/database"
	"github.com/iliyamo/cineclub/internal/repository"
	"github.com/iliyamo/cineclub/internal/utils"
)

var (
	name   = flag.String("name", "", "display name of the new member")
	avatar = flag.String("avatar", "", "avatar text or URL")
	pin    = flag.String("pin", "", "4 to 8 digit PIN")
	chat   = flag.Bool("chat", false, "allow the member to use the group chat")
	id     = flag.Uint64("id", 0, "existing user id whose PIN is replaced")
)

func main() {
	flag.Parse()
	if !utils.ValidPIN(*pin) {
		log.Fatal(utils.ErrBadPIN)
	}
	if *id == 0 && *name == "" {
		log.Fatal("either -name or -id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := repository.NewUserRepo(db)

	if *id != 0 {
		if err := users.SetPIN(ctx, *id, *pin, cfg.BcryptCost); err != nil {
			log.Fatalf("set pin: %v", err)
		}
		fmt.Printf("PIN updated for user %d\n", *id)
		return
	}

	uid, err := users.Create(ctx, *name, *avatar, *pin, *chat, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	fmt.Printf("Created user %q with id %d (chat=%t)\n", *name, uid, *chat)
}
