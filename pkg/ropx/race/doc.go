// Package race runs alternative operations concurrently.
//
// First returns the first Success among alternatives and cancels the
// losers. Hedge starts a backup after a delay to mitigate a slow primary
// and takes whichever finishes first.
//
// Cancellation of losers is advisory: each loser's context is cancelled,
// but native work ignoring the context may run to completion in the
// background.
package race
