// Package deploy mirrors the local project to the deployment host and
// restarts its service.
//
// A deployment is two phases. The sync phase runs rsync through the process
// runner with the fixed exclusion list. The remote phase opens one SSH shell
// and runs, in order, the cd into the remote directory, the dependency sync,
// and the service restart. The first failure ends the deployment; nothing is
// rolled back.
package deploy
