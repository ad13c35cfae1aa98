// ==============================================================================
// SDN LIST REFRESH - cmd/update-sdn/main.go
// ==============================================================================
// Downloads the OFAC SDN list and extracts every digital currency address
// into the JSON snapshot the screening service loads at startup.
package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSDNURL = "https://www.treasury.gov/ofac/downloads/sdn.xml"

type sdnID struct {
	IDType   string `xml:"idType"`
	IDNumber string `xml:"idNumber"`
}

type sdnEntry struct {
	IDs []sdnID `xml:"idList>id"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	var (
		sourceURL = flag.String("url", defaultSDNURL, "SDN list source URL")
		outPath   = flag.String("out", "", "output path (defaults to SDN_LIST_PATH)")
	)
	flag.Parse()

	path := *outPath
	if path == "" {
		path = os.Getenv("SDN_LIST_PATH")
	}
	if path == "" {
		path = "./data/sdn_list.json"
	}

	log.Printf("Fetching SDN list from %s", *sourceURL)

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(*sourceURL)
	if err != nil {
		log.Fatalf("Failed to download SDN list: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("SDN download returned HTTP %d", resp.StatusCode)
	}

	addresses, err := extractAddresses(resp.Body)
	if err != nil {
		log.Fatalf("Failed to parse SDN list: %v", err)
	}
	if len(addresses) == 0 {
		log.Fatal("No digital currency addresses found, refusing to overwrite snapshot")
	}

	if err := writeSnapshot(path, addresses); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}

	log.Printf("Wrote %d addresses to %s", len(addresses), path)
}

// extractAddresses streams the SDN XML and collects every ID whose type is a
// digital currency address ("Digital Currency Address - XBT", "- ETH", ...).
func extractAddresses(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "sdnEntry" {
			continue
		}

		var entry sdnEntry
		if err := dec.DecodeElement(&entry, &start); err != nil {
			return nil, err
		}

		for _, id := range entry.IDs {
			if !strings.HasPrefix(id.IDType, "Digital Currency Address") {
				continue
			}
			addr := strings.ToLower(strings.TrimSpace(id.IDNumber))
			if addr != "" {
				seen[addr] = struct{}{}
			}
		}
	}

	addresses := make([]string, 0, len(seen))
	for addr := range seen {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)
	return addresses, nil
}

// writeSnapshot writes atomically so a half-written file never replaces a
// good snapshot.
func writeSnapshot(path string, addresses []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
