// File: utils/constants.go
package utils

import "time"

// AdminRole is the role claim carried by admin tokens.
const AdminRole = "admin"

// AdminTokenTTL is how long an admin token stays valid.
const AdminTokenTTL = 12 * time.Hour

// SessionSnapshotTTL bounds how long an evicted session can be restored.
const SessionSnapshotTTL = 24 * time.Hour
