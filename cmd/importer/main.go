package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rdhub/rdhub/backend/go-services/internal/database"
	"github.com/rdhub/rdhub/backend/go-services/internal/ingest"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource/repository"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource/service"
)

// Batch importer: reads DataCite XML records or CSV batches from files and
// creates draft resources. Without MONGODB_URI it runs as a dry-run parser,
// which is useful for validating exports before loading them.
func main() {
	dryRun := flag.Bool("dry-run", false, "parse and report without writing to the database")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: importer [-dry-run] <file> [file...]")
		os.Exit(2)
	}

	var repo service.Repository
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" && !*dryRun {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Fatalf("cannot connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		col := client.Database(os.Getenv("MONGODB_DATABASE")).Collection("resources")
		repo = repository.NewMongoRepo(col)
	} else {
		if !*dryRun {
			log.Printf("MONGODB_URI not set — running as dry-run")
			*dryRun = true
		}
		repo = repository.NewMemoryRepo()
	}
	svc := service.New(repo, 0, "", nil, nil, "")

	ctx := context.Background()
	total, failed := 0, 0
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++
			continue
		}
		recs, rowErrs, err := ingest.Parse(data)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++
			continue
		}
		for _, e := range rowErrs {
			log.Printf("%s: %v", path, e)
			failed++
		}
		for _, r := range recs {
			if *dryRun {
				fmt.Printf("%s: ok %q doi=%q\n", path, r.Title, r.DOI)
				total++
				continue
			}
			id, err := svc.Create(ctx, r)
			if err != nil {
				log.Printf("%s: create %q: %v", path, r.Title, err)
				failed++
				continue
			}
			fmt.Printf("%s: created %s %q\n", path, id, r.Title)
			total++
		}
	}
	fmt.Printf("imported %d record(s), %d error(s)\n", total, failed)
	if failed > 0 && total == 0 {
		os.Exit(1)
	}
}
