package main

import (
	"fmt"
	"log"
	"os"

	"motorent/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Small ops CLI for support work against the chat tables.
func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	}

	s := storage.NewService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: chats <user_id> | unread <user_id> | presence-clear <user_id>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chats":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin chats <user_id>")
			os.Exit(1)
		}
		if err := listChats(s, os.Args[2]); err != nil {
			log.Fatalf("Error listing chats: %v", err)
		}
	case "unread":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unread <user_id>")
			os.Exit(1)
		}
		count, err := s.CountUnreadForUser(os.Args[2])
		if err != nil {
			log.Fatalf("Error counting unread: %v", err)
		}
		fmt.Printf("User %s has %d unread messages.\n", os.Args[2], count)
	case "presence-clear":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin presence-clear <user_id>")
			os.Exit(1)
		}
		if rdb == nil {
			fmt.Println("REDIS_ADDR is not set.")
			os.Exit(1)
		}
		if err := s.ClearPresence(os.Args[2]); err != nil {
			log.Fatalf("Error clearing presence: %v", err)
		}
		fmt.Printf("Presence cleared for user %s.\n", os.Args[2])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func listChats(s storage.Storage, userID string) error {
	chats, err := s.FindChatsForUser(userID)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println("No chats found.")
		return nil
	}
	for _, c := range chats {
		unread, err := s.CountUnreadInChat(c.ID, userID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  rental=%s  renter=%s  owner=%s  unread=%d  updated=%s\n",
			c.ID, c.RentalID, c.RenterID, c.OwnerID, unread, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
