// Package location hides the exact position of a listing behind a stable,
// pseudo-random offset.
//
// The offset is derived from an opaque location key (typically the street
// address concatenated with the owner identifier, see Key). Equal keys always
// produce bit-identical offsets, across calls, processes and platforms, so
// the map renderer and the persistence layer compute the same public point
// independently and repeated observation of a listing cannot be averaged out.
//
// # Usage
//
//	obf, err := location.NewObfuscator(cfg.Location.MaxOffsetDegrees)
//	if err != nil {
//		return err
//	}
//
//	key, err := location.Key(address, ownerID)
//	if err != nil {
//		return err
//	}
//	public, err := obf.Public(key, truePoint)
//	if err != nil {
//		return err
//	}
//
// # Threat Model
//
// The key is hashed with djb2 (seed 5381, 32-bit signed wrap-around per
// UTF-16 code unit). djb2 is not a cryptographic primitive. It disperses
// small input changes well, which is enough to defeat casual triangulation
// by repeated observation, but anyone who can guess the address and owner
// identifier can recompute the offset and recover the true point. The hash
// is kept bit-compatible with offsets that are already stored; switching to
// a keyed construction (for example an HMAC with a server-held secret) would
// change every public point and is deliberately not done here.
package location
