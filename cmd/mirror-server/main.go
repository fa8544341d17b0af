package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

func main() {
	var (
		addr     = flag.String("addr", ":9000", "listen address")
		dataPath = flag.String("data", "data/mirror.json", "mirror fixture path")
	)
	flag.Parse()

	// serves the fixture at GET /tournaments, the same shape the Kings
	// Club feed uses, so the scraper runs offline against it
	http.HandleFunc("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile(*dataPath)
		if err != nil {
			http.Error(w, "cannot read mirror.json: "+err.Error(), http.StatusInternalServerError)
			return
		}
		// validate JSON so bad file doesn't silently break
		var tmp any
		if err := json.Unmarshal(b, &tmp); err != nil {
			http.Error(w, "mirror.json invalid JSON: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	})

	log.Printf("mirror-server listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
