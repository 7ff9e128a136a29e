// Package safety screens listing text for prohibited terms before it is
// published.
//
// Text is first canonicalized by Normalize (lowercase, leetspeak
// substitution, punctuation removal, run shortening, whitespace collapse) and
// then searched for the terms of a TermSet. The first term in configuration
// order wins, so dictionaries list the most severe terms first.
//
// # Usage
//
//	ts, err := safety.Source{DictionaryPath: path}.Build()
//	if err != nil {
//		return err
//	}
//	store := safety.NewStore(ts)
//	filter := safety.NewFilter(store)
//
//	if res := filter.Validate(title, description); !res.Valid {
//		// reject the listing without echoing res.ViolatingTerm
//	}
//
// # Known Limitations
//
// These behaviors are deliberate and covered by tests:
//
//   - Matching is by substring, so innocent words containing a term are
//     flagged too.
//   - Runs of three or more letters shrink to two, not one: "fuuuck"
//     normalizes to "fuuck" and is not caught by "fuck".
//   - Validate joins title and description with a space, so a term split
//     across the two fields is not caught.
//
// # Reloading
//
// A Store serves the current TermSet through an atomic pointer. Reloader
// rebuilds the set from its Source and swaps it in only when the dictionary
// parses; FileWatcher and ReloadScheduler trigger reloads on file change or
// on a cron schedule.
package safety
