// Package storage persists mixin data in SQLite.
//
// Each device gets a bucket keyed by its storage native id (see
// mixin.Device.StorageNativeID). Buckets implement sdk.Storage:
//
//	store := storage.NewSQLiteStore(db.DB)
//	bucket := store.Bucket("light-living")
//	err := bucket.Set(ctx, "room", "Kitchen")
//
// The mixin_storage table is created by the embedded migrations.
package storage
