// Package softdelete implements transparent soft-deletion on top of GORM.
//
// Records are never physically removed by default: destroying a record sets a
// marker column instead, and every query built through a Store silently
// excludes marked rows. A store can be switched into an exclusive scope
// (WithDestroyed / DestroyedOnly) to see marked rows, a destroyed record can
// be restored, and restoration cascades through dependent relationships that
// are themselves soft-deletable.
//
// The engine keeps no ambient state. Scope is a field on the store value; a
// derived store is a copy, so nested or failing exclusive scopes can never
// leave filtering disabled for anyone else.
package softdelete
