package domain

import "math/rand"

// AssignRoles builds the role multiset for n players and shuffles it
// uniformly. Composition: exactly 1 police, 1 doctor, one mafia for every
// three remaining players, citizens for the rest. The start-game guard keeps
// n at 5 or more.
func AssignRoles(n int) []Role {
	roles := make([]Role, 0, n)
	roles = append(roles, RolePolice, RoleDoctor)

	mafiaCount := (n - 2) / 3
	for i := 0; i < mafiaCount; i++ {
		roles = append(roles, RoleMafia)
	}

	for len(roles) < n {
		roles = append(roles, RoleCitizen)
	}

	rand.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	return roles
}

// MafiaCountFor returns how many mafia AssignRoles deals for n players
func MafiaCountFor(n int) int {
	return (n - 2) / 3
}
