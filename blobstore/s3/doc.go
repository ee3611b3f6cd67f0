// Package s3 provides an Amazon S3 implementation of blobstore.Store and a
// DynamoDB-backed catalog of published edge lists.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("us-east-1"))
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "runs/")
//	err = store.Put(ctx, "run-1/edges.eql", data)
//
// # Features
//
//   - Multipart uploads through the SDK upload manager
//   - CRC32C integrity checksums on upload
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
