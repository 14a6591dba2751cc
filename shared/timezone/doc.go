// Package timezone pins every timestamp the service writes to one
// application timezone.
//
// Created/updated stamps on rows, message ordering, and token expiry all
// go through timezone.Now(), so a deploy in a different region cannot
// shift how rows compare to each other.
//
//	now := timezone.Now()
//	local := timezone.ToAppTime(someTime)
//	s := timezone.Format(time.Now(), "2006-01-02 15:04:05")
//	t, err := timezone.Parse("2006-01-02", "2026-01-01")
//
// The zone comes from the APP_TIMEZONE environment variable, loaded when
// the package is imported. Use IANA names ("UTC", "Asia/Jakarta"); an
// unknown name falls back to UTC.
package timezone
