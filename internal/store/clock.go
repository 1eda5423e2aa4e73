package store

import "time"

// nowUTC is a hook so tests can pin the clock when checking promo windows.
var nowUTC = func() time.Time { return time.Now().UTC() }
