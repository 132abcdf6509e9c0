// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleUser.Valid() {
		t.Error("known roles reported invalid")
	}
	if Role("superuser").Valid() || Role("").Valid() {
		t.Error("unknown role reported valid")
	}
}

func TestUserHelpers(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	u := User{Role: RoleAdmin, PasswordHash: &hash}
	if !u.IsAdmin() || !u.HasPassword() {
		t.Error("admin with password misreported")
	}

	empty := ""
	u = User{Role: RoleUser, PasswordHash: &empty}
	if u.IsAdmin() || u.HasPassword() {
		t.Error("user with empty hash misreported")
	}

	u = User{Role: RoleUser}
	if u.HasPassword() {
		t.Error("nil hash reported as password")
	}
}

func TestPostStatusValid(t *testing.T) {
	if !PostStatusDraft.Valid() || !PostStatusPublished.Valid() {
		t.Error("known statuses reported invalid")
	}
	if PostStatus("archived").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestPostIsPublished(t *testing.T) {
	p := Post{Status: PostStatusPublished}
	if !p.IsPublished() {
		t.Error("published post misreported")
	}
	p.Status = PostStatusDraft
	if p.IsPublished() {
		t.Error("draft reported as published")
	}
}

func TestComputedTypeValid(t *testing.T) {
	if !ComputedStatic.Valid() || !ComputedDynamic.Valid() {
		t.Error("known computed types reported invalid")
	}
	if ComputedType("hybrid").Valid() {
		t.Error("unknown computed type reported valid")
	}
}

func TestVisibilityValid(t *testing.T) {
	if !VisibilityPublic.Valid() || !VisibilityPrivate.Valid() {
		t.Error("known visibilities reported invalid")
	}
	if Visibility("hidden").Valid() || Visibility("").Valid() {
		t.Error("unknown visibility reported valid")
	}
}
