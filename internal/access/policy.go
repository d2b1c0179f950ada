package access

// Ownership and role predicates. They only compare the principal against the
// usernames recorded on the entity, so callers must load the farm owner first.

func IsFarmer(p Principal) bool {
	_, ok := p.(Farmer)
	return ok
}

func IsCompany(p Principal) bool {
	_, ok := p.(Company)
	return ok
}

// CanCreateFarm: only farmers list farms.
func CanCreateFarm(p Principal) bool {
	return IsFarmer(p)
}

// CanMutateFarm covers update, delete and image management of a farm.
func CanMutateFarm(p Principal, farmOwner string) bool {
	f, ok := p.(Farmer)
	return ok && f.Username == farmOwner
}

func CanPlaceBid(p Principal) bool {
	return IsCompany(p)
}

// CanViewBid: the authoring company or the owner of the bid's farm.
func CanViewBid(p Principal, bidAuthor, farmOwner string) bool {
	return isAuthor(p, bidAuthor) || CanMutateFarm(p, farmOwner)
}

// CanEditBidAmount also governs withdrawing (deleting) the bid.
func CanEditBidAmount(p Principal, bidAuthor string) bool {
	return isAuthor(p, bidAuthor)
}

func CanWithdrawBid(p Principal, bidAuthor string) bool {
	return isAuthor(p, bidAuthor)
}

// CanSetBidStatus: only the owner of the farm the bid is placed on.
func CanSetBidStatus(p Principal, farmOwner string) bool {
	return CanMutateFarm(p, farmOwner)
}

func isAuthor(p Principal, bidAuthor string) bool {
	c, ok := p.(Company)
	return ok && c.Username == bidAuthor
}

// SchemePolicy decides who may write to the scheme directory. With no admin
// usernames configured, any company may write.
type SchemePolicy struct {
	AdminUsernames []string
}

func (sp SchemePolicy) CanManageSchemes(p Principal) bool {
	if p == nil {
		return false
	}
	if len(sp.AdminUsernames) == 0 {
		return IsCompany(p)
	}
	for _, name := range sp.AdminUsernames {
		if name == p.Name() {
			return true
		}
	}
	return false
}
