package termparse

import (
	"strings"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

func derivePersonnel(lines []string, assignments []models.ImportAssignment) []models.ImportPersonnel {
	var (
		result []models.ImportPersonnel
		seen   = make(map[string]struct{})
	)
	add := func(p models.ImportPersonnel) {
		if p.Name == "" {
			return
		}
		key := string(p.Role) + "|" + strings.ToLower(p.Name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		result = append(result, p)
	}

	for _, line := range lines {
		if m := adminJudgeRe.FindStringSubmatch(line); m != nil {
			add(models.ImportPersonnel{Name: cleanName(collapseSpaces(m[1])), Role: models.PersonnelRoleAdministrativeJudge})
		}
		if m := chiefClerkRe.FindStringSubmatch(line); m != nil {
			add(models.ImportPersonnel{Name: cleanName(collapseSpaces(m[1])), Role: models.PersonnelRoleChiefClerk})
		}
	}

	for _, a := range assignments {
		add(models.ImportPersonnel{
			Name:       a.JusticeName,
			Role:       models.PersonnelRoleJustice,
			Phone:      a.Phone,
			RoomNumber: a.RoomNumber,
		})
		for _, clerk := range a.ClerkNames {
			add(models.ImportPersonnel{
				Name:       clerk,
				Role:       models.PersonnelRoleClerk,
				Extension:  a.TelExtension,
				RoomNumber: a.RoomNumber,
			})
		}
		add(models.ImportPersonnel{
			Name:       a.SergeantName,
			Role:       models.PersonnelRoleSergeant,
			RoomNumber: a.RoomNumber,
		})
	}
	return result
}
