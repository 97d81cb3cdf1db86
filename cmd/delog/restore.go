package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/example/delog/internal/backup"
)

func restoreCmd(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	var (
		repo    = fs.String("repo", ".", "repo root")
		session = fs.String("session", "", "backup session id (default: latest)")
		list    = fs.Bool("list", false, "list backup sessions and exit")
	)
	_ = fs.Parse(args)

	store := backup.Open(*repo)

	if *list {
		ids, err := store.Sessions()
		if err != nil {
			log.Fatal(err)
		}
		if len(ids) == 0 {
			fmt.Println("no backup sessions")
			return
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	id := *session
	if id == "" {
		latest, err := store.Latest()
		if err != nil {
			log.Fatal(err)
		}
		if latest == "" {
			fmt.Fprintln(os.Stderr, "no backup sessions to restore")
			os.Exit(1)
		}
		id = latest
	}

	n, err := store.Restore(id)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("restored %d files from session %s", n, id)
}
