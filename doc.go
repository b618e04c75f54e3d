// Copyright (c) 2026 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package goebics implements the client side of the EBICS key-exchange handshake
(Electronic Banking Internet Communication Standard, version 2.5 / schema H004).

# Overview

go-ebics establishes the cryptographic trust relationship between a corporate
user and a bank server: it generates the user's RSA key material, submits the
public keys to the bank (order types INI and HIA), retrieves the bank's public
keys (order type HPB), and manages all key material in a password-protected
key ring file. Once the handshake completes, the key ring carries everything a
business-document exchange needs.

# Specifications Implemented

  - EBICS 2.5 (schema H004): https://www.ebics.org/
  - EBICS signature schema S001 (signature version A006)
  - XML Signature Syntax and Processing: https://www.w3.org/TR/xmldsig-core1/

# Package Structure

The library is organized into the following packages:

	github.com/sirosfoundation/go-ebics/pkg/client      - Bootstrap orchestrator (INI, HIA, HPB)
	github.com/sirosfoundation/go-ebics/pkg/keyring     - Key ring model and encrypted persistence
	github.com/sirosfoundation/go-ebics/pkg/crypto      - Canonicalization, digests, signatures, decryption
	github.com/sirosfoundation/go-ebics/pkg/envelope    - EBICS XML envelope assembly and response parsing
	github.com/sirosfoundation/go-ebics/pkg/transport   - HTTP(S) transport to the bank server
	github.com/sirosfoundation/go-ebics/pkg/compression - ZLIB order-data compression

# Quick Start

To run the key-exchange handshake:

	import (
	    "github.com/sirosfoundation/go-ebics/pkg/client"
	    "github.com/sirosfoundation/go-ebics/pkg/envelope"
	    "github.com/sirosfoundation/go-ebics/pkg/keyring"
	)

	manager := keyring.NewManager("keyring.json", passphrase)
	ring, _ := manager.Load()

	c, _ := client.New(&client.Config{
	    Bank:    envelope.Bank{HostID: "EBIXHOST", URL: "https://bank.example.com/ebicsweb"},
	    User:    envelope.User{PartnerID: "PARTNER1", UserID: "USER1"},
	    KeyRing: ring,
	})

	// Submit the user's signature key, then the encryption and
	// authentication keys, then fetch the bank's public keys.
	_, err := c.SubmitSignatureKey(ctx)
	_, err = c.SubmitEncryptionAuthKeys(ctx)
	_, err = c.RetrieveBankKeys(ctx)

	manager.Save(ring)

# Security Model

  - RSA 2048-bit keys, one per protocol role: signature (A006),
    encryption (E002), authentication (X002)
  - Request authentication: RSA-SHA256 over canonicalized header elements
  - Key ring at rest: private keys sealed with AES-256-GCM under a
    PBKDF2-SHA256 derived key
  - Bank order data: RSA key transport plus AES-128-CBC, ZLIB-compressed

# License

BSD-2-Clause License
*/
package goebics
