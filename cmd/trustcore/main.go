// Trustcore is the MealShare trust and safety core.
//
// It screens listing text for prohibited terms and derives the public,
// deliberately imprecise location shown for a pickup address. The same
// operations are available as one-shot commands and as an HTTP sidecar.
//
// Usage:
//
//	# Start the HTTP sidecar
//	trustcore run --config /etc/trustcore/config.yaml
//
//	# Check a listing
//	trustcore validate --title "Pasta Bolognese" --description "Frisch gekocht"
//
//	# Check text or a file of texts, one per line
//	trustcore check "total \$h1t"
//	trustcore check --file listings.txt --output csv
//
//	# Show how text is normalized before matching
//	trustcore normalize "F.U.C.K"
//
//	# Compute a public location
//	trustcore offset --address "Hauptstraße 12" --owner owner-42 --lat 52.52 --lng 13.405
//
//	# Lint a dictionary
//	trustcore dict lint dictionaries/custom.yaml
package main

import "os"

func main() {
	os.Exit(Execute())
}
