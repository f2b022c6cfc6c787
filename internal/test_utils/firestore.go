package test_utils

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	FirestoreProject = "eventdeck-test"
	firestoreImage   = "gcr.io/google.com/cloudsdktool/cloud-sdk:523.0.0-emulators"
	firestorePort    = "8080/tcp"
)

func prepareFirestoreContainer(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        firestoreImage,
		ExposedPorts: []string{firestorePort},
		Cmd: []string{"/bin/sh", "-c",
			"gcloud beta emulators firestore start --host-port 0.0.0.0:8080 --project=" + FirestoreProject},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(firestorePort),
			wait.ForLog("running"),
		).WithDeadline(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Errorf("failed to start container: %s", err)
		return nil, err
	}
	return container, nil
}

// TestWithFirestore starts the Firestore emulator and returns a client connected to it together
// with a cleanup function terminating the container. The client finds the emulator through
// FIRESTORE_EMULATOR_HOST, which stays set for the rest of the test binary.
func TestWithFirestore() (*firestore.Client, func()) {
	ctx := context.Background()

	container, err := prepareFirestoreContainer(ctx)
	if err != nil {
		log.Errorf("Failed to start firestore container: %v", err)
		os.Exit(1)
	}

	endpoint, err := container.PortEndpoint(ctx, firestorePort, "")
	if err != nil {
		log.Fatalf("Failed to resolve firestore emulator endpoint: %v", err)
	}
	log.Infof("Firestore emulator started at %s", endpoint)
	if err := os.Setenv("FIRESTORE_EMULATOR_HOST", endpoint); err != nil {
		log.Fatalf("Failed to point the client at the emulator: %v", err)
	}

	client, err := firestore.NewClient(ctx, FirestoreProject)
	if err != nil {
		log.Fatalf("Failed to create firestore client: %v", err)
	}

	return client, func() {
		if err := client.Close(); err != nil {
			log.Warnf("failed to close firestore client: %v", err)
		}
		if err := testcontainers.TerminateContainer(container); err != nil {
			log.Warnf("failed to terminate firestore container: %v", err)
		}
	}
}

// RequireFirestore skips t when the package runs without the emulator (go test -short).
func RequireFirestore(t *testing.T, client *firestore.Client) {
	t.Helper()
	if client == nil {
		t.Skip("firestore emulator not available in short mode")
	}
}

// ClearFirestore drops every document the emulator holds for the test project.
func ClearFirestore(t *testing.T) {
	t.Helper()
	url := fmt.Sprintf("http://%s/emulator/v1/projects/%s/databases/(default)/documents",
		os.Getenv("FIRESTORE_EMULATOR_HOST"), FirestoreProject)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("failed to build emulator reset request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to reset firestore emulator: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("failed to reset firestore emulator: %s", resp.Status)
	}
}
