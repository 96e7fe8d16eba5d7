package gcp

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// clientOptions uses the service account file when one is configured, else application default credentials.
func clientOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

// GetApp creates a Firebase App instance.
func GetApp(ctx context.Context, credentialsFile string) (*firebase.App, error) {
	return firebase.NewApp(ctx, nil, clientOptions(credentialsFile)...)
}

// InitFirebaseAuth returns the Auth client used to verify staff ID tokens.
func InitFirebaseAuth(ctx context.Context, credentialsFile string) (*firebaseauth.Client, error) {
	app, err := GetApp(ctx, credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app [%w]", err)
	}

	fbAuth, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase auth [%w]", err)
	}

	return fbAuth, nil
}

// NewStorageClient opens a Cloud Storage client with the same credentials as Firebase.
func NewStorageClient(ctx context.Context, credentialsFile string) (*gcs.Client, error) {
	client, err := gcs.NewClient(ctx, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing cloud storage [%w]", err)
	}
	return client, nil
}
