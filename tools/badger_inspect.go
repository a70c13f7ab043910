// Command badger_inspect dumps the persisted history of a chat as a table.
//
// Meant for poking at a live data directory while the server is stopped:
//
//	go run ./tools -db /var/lib/chat-relay -chat chat-1 -limit 50
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"chat-relay/repositories"
)

func main() {
	dbPath := flag.String("db", "", "Path to the badger data directory")
	chat := flag.String("chat", "", "Chat id to dump")
	limit := flag.Int("limit", 0, "Maximum number of messages (0 = all)")
	flag.Parse()

	if *dbPath == "" || *chat == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slog.Default())
	messages, err := repository.GetMessages(*chat, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "At", "Sender", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, m := range messages {
		displayID := m.ID.String()
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		table.Append([]string{
			displayID,
			m.At.Format("2006-01-02 15:04:05"),
			m.SenderID,
			m.Content,
		})
	}
	table.Render()
}
