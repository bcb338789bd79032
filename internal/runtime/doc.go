// Package runtime manages provisioning containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides base-image pull
// and container creation. Base images are pulled from their registry for
// the target platform, unpacked into the snapshotter, and used to create
// containers with overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Commands can be
// executed inside the container, files can be copied in and out as tar
// streams, and the final filesystem state can be committed and exported
// as a new OCI archive with an updated image config (entrypoint, env,
// user, workdir). When the container is no longer needed it should be
// destroyed to release its snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "spkenv")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "docker.io/library/ubuntu:16.04", "provision-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "apt-get update", nil, "")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Entrypoint: []string{"python", "/opt/app/main.py"},
//	})
package runtime
