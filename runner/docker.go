package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/container"
	dockerimagetypes "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	dockerclient "github.com/moby/moby/client"
	"github.com/moby/moby/errdefs"
	"go.uber.org/zap"
)

const (
	// CleanupLabel tags every container created by the docker process
	// manager so stale runs can be found and removed.
	CleanupLabel = "com.warpfleet.warpd"

	workspaceDir  = "/workspace"
	defaultUIDGID = "0:0"
)

var resourceNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Image identifies the CLI container image used by the docker process manager.
type Image struct {
	Repository string
	Version    string
	UIDGID     string
}

// Ref returns the reference to use when creating a container.
func (i Image) Ref() string {
	if i.Version == "" {
		return i.Repository + ":latest"
	}
	return i.Repository + ":" + i.Version
}

// DockerConfig parameterizes a DockerProcessManager.
type DockerConfig struct {
	Logger    *zap.Logger
	Client    *dockerclient.Client
	NetworkID string
	Image     Image
	// VolumeName is the named volume bound at the workspace directory so the
	// registry and config files written by one command are visible to the next.
	VolumeName string
	// Env is passed to every command, in KEY=VALUE form.
	Env []string
	// RunLabel is the CleanupLabel value, typically the run or service name.
	RunLabel string
}

// DockerProcessManager runs each command in a one-shot container of the
// hyperlane CLI image, sharing a workspace volume across commands.
type DockerProcessManager struct {
	cfg DockerConfig
}

// NewDockerProcessManager creates a docker-backed process manager.
func NewDockerProcessManager(cfg DockerConfig) (*DockerProcessManager, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("docker client is required")
	}
	if cfg.Image.Repository == "" {
		return nil, fmt.Errorf("image repository is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Image.UIDGID == "" {
		cfg.Image.UIDGID = defaultUIDGID
	}
	return &DockerProcessManager{cfg: cfg}, nil
}

var _ ProcessManager = (*DockerProcessManager)(nil)

// Run creates a container for the command, starts it, waits for it to exit
// and returns the demultiplexed standard output. The container is removed
// afterwards regardless of outcome.
func (m *DockerProcessManager) Run(ctx context.Context, name, command string) (string, error) {
	if err := m.pullImage(ctx); err != nil {
		return "", fmt.Errorf("pull image %s: %w", m.cfg.Image.Ref(), err)
	}

	containerName := fmt.Sprintf("warpd-%s-%d", sanitizeResourceName(name), time.Now().UnixNano())
	m.cfg.Logger.Info("running command in container",
		zap.String("image", m.cfg.Image.Ref()),
		zap.String("container", containerName),
		zap.String("command", command))

	var endpoints map[string]*network.EndpointSettings
	if m.cfg.NetworkID != "" {
		endpoints = map[string]*network.EndpointSettings{
			m.cfg.NetworkID: {},
		}
	}

	cc, err := m.cfg.Client.ContainerCreate(
		ctx,
		&container.Config{
			Image:      m.cfg.Image.Ref(),
			Cmd:        []string{"sh", "-c", command},
			Env:        m.cfg.Env,
			User:       m.cfg.Image.UIDGID,
			Hostname:   containerName,
			WorkingDir: workspaceDir,
			Labels:     map[string]string{CleanupLabel: m.cfg.RunLabel},
		},
		&container.HostConfig{
			Binds:      m.binds(),
			AutoRemove: false,
		},
		&network.NetworkingConfig{
			EndpointsConfig: endpoints,
		},
		nil,
		containerName,
	)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", containerName, err)
	}
	defer m.removeContainer(cc.ID, containerName)

	if err := m.cfg.Client.ContainerStart(ctx, cc.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("start container %s: %w", containerName, err)
	}

	statusCh, errCh := m.cfg.Client.ContainerWait(ctx, cc.ID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		return "", fmt.Errorf("wait for container %s: %w", containerName, err)
	case status := <-statusCh:
		exitCode = status.StatusCode
	case <-ctx.Done():
		return "", ctx.Err()
	}

	stdout, stderr, err := m.containerOutput(ctx, cc.ID)
	if err != nil {
		return "", fmt.Errorf("read logs of container %s: %w", containerName, err)
	}

	if exitCode != 0 {
		m.cfg.Logger.Error("command exited abnormally",
			zap.String("name", name),
			zap.Int64("exitCode", exitCode),
			zap.String("stderr", stderr))
		return "", fmt.Errorf("%s: exit code %d: %s", name, exitCode, strings.TrimSpace(stderr))
	}
	return stdout, nil
}

func (m *DockerProcessManager) binds() []string {
	if m.cfg.VolumeName == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s:%s", m.cfg.VolumeName, workspaceDir)}
}

// pullImage pulls the CLI image if it is not already present. Registry pulls
// are flaky enough to warrant a bounded retry.
func (m *DockerProcessManager) pullImage(ctx context.Context) error {
	ref := m.cfg.Image.Ref()
	if _, _, err := m.cfg.Client.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	}
	return retry.Do(
		func() error {
			rc, err := m.cfg.Client.ImagePull(ctx, ref, dockerimagetypes.PullOptions{})
			if err != nil {
				return err
			}
			_, _ = io.Copy(io.Discard, rc)
			return rc.Close()
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.DelayType(retry.FixedDelay),
	)
}

func (m *DockerProcessManager) containerOutput(ctx context.Context, id string) (string, string, error) {
	rc, err := m.cfg.Client.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", err
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil {
		return "", "", err
	}
	return stdout.String(), stderr.String(), nil
}

func (m *DockerProcessManager) removeContainer(id, name string) {
	err := m.cfg.Client.ContainerRemove(context.Background(), id, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: false,
	})
	if err != nil && !errdefs.IsNotFound(err) {
		m.cfg.Logger.Warn("failed to remove container",
			zap.String("container", name),
			zap.Error(err))
	}
}

func sanitizeResourceName(name string) string {
	return resourceNameRe.ReplaceAllString(name, "-")
}
