/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package remote uploads a persist dump to off-box storage once it has been
// written locally, so an operator can recover Koinonia state after total
// host loss. Two backends are supported, grounded on what the rest of the
// example corpus already wires an S3/FTP stack for: aws.AWS.Object().Put
// and ftpclient.FTPClient.Stor.
package remote

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/sabouaram/collab/aws"
	awscustom "github.com/sabouaram/collab/aws/configCustom"
	"github.com/sabouaram/collab/certificates"
	"github.com/sabouaram/collab/ftpclient"
)

// S3Target uploads a dump to one bucket object via the already-configured
// aws.AWS client.
type S3Target struct {
	Client aws.AWS
	Key    string
}

// Upload implements Target for S3Target.
func (t S3Target) Upload(r io.Reader) error {
	return t.Client.Object().Put(t.Key, r)
}

// FTPTarget uploads a dump to one remote path via an already-connected
// ftpclient.FTPClient.
type FTPTarget struct {
	Client ftpclient.FTPClient
	Path   string
}

// Upload implements Target for FTPTarget.
func (t FTPTarget) Upload(r io.Reader) error {
	return t.Client.Stor(t.Path, r)
}

// Target is one off-box destination a dump can be pushed to.
type Target interface {
	Upload(r io.Reader) error
}

// NewS3Target builds an S3Target from raw credentials, the shape collabd's
// --backup-s3-* flags collect. endpointRaw is the S3-compatible endpoint
// URL (e.g. "https://s3.us-east-1.amazonaws.com").
func NewS3Target(ctx context.Context, bucket, accessKey, secretKey, endpointRaw, region, key string) (S3Target, error) {
	endpoint, err := url.Parse(endpointRaw)
	if err != nil {
		return S3Target{}, err
	}
	cfg := awscustom.NewConfig(bucket, accessKey, secretKey, endpoint, region)
	cli, e := aws.New(ctx, cfg, nil)
	if e != nil {
		return S3Target{}, e
	}
	return S3Target{Client: cli, Key: key}, nil
}

// NewFTPTarget builds an FTPTarget from connection details, the shape
// collabd's --backup-ftp-* flags collect.
func NewFTPTarget(ctx context.Context, hostname, login, pw, path string) (FTPTarget, error) {
	cfg := &ftpclient.Config{
		Hostname:    hostname,
		Login:       login,
		Password:    pw,
		ConnTimeout: 30 * time.Second,
	}
	cfg.RegisterContext(func() context.Context { return ctx })
	cfg.RegisterDefaultTLS(func() certificates.TLSConfig { return certificates.New() })
	cli, err := ftpclient.New(cfg)
	if err != nil {
		return FTPTarget{}, err
	}
	return FTPTarget{Client: cli, Path: path}, nil
}
